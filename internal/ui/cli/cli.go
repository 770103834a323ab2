package cli

import "flag"

const versionString = "1.0.0"
const defaultConfigPath = "fqcnfix.toml"

type cliOptions struct {
	directory    string
	extensions   string
	exclude      string
	lintConfig   string
	configPath   string
	write        bool
	backupSuffix string
	noDiff       bool
	mapPath      string
	updateMap    bool
	history      bool
	historyPath  string
	verbose      bool
	version      bool
	args         []string
}

func parseOptions(args []string) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("fqcnfix", flag.ContinueOnError)

	fs.StringVar(&opts.directory, "directory", "", "Directory to scan for playbooks and task files (default from config, else \".\")")
	fs.StringVar(&opts.directory, "d", "", "Shorthand for -directory")
	fs.StringVar(&opts.extensions, "extensions", "", "Comma separated file extensions to scan (default \"yml,yaml\")")
	fs.StringVar(&opts.extensions, "e", "", "Shorthand for -extensions")
	fs.StringVar(&opts.exclude, "exclude", "", "Comma separated exclude patterns, added to the built-in set")
	fs.StringVar(&opts.lintConfig, "lint-config", "", "ansible-lint config contributing exclude_paths (default \".ansible-lint\")")
	fs.StringVar(&opts.lintConfig, "c", "", "Shorthand for -lint-config")
	fs.StringVar(&opts.configPath, "config", defaultConfigPath, "Path to config file")
	fs.BoolVar(&opts.write, "write", false, "Write changes back to the scanned files")
	fs.BoolVar(&opts.write, "w", false, "Shorthand for -write")
	fs.StringVar(&opts.backupSuffix, "backup-suffix", "", "Backup suffix for rewritten files (default \".bak\")")
	fs.StringVar(&opts.backupSuffix, "b", "", "Shorthand for -backup-suffix")
	fs.BoolVar(&opts.noDiff, "no-diff", false, "Do not print unified diffs of pending changes")
	fs.BoolVar(&opts.noDiff, "x", false, "Shorthand for -no-diff")
	fs.StringVar(&opts.mapPath, "map-file", "", "Path of the fqcn map cache (default \"fqcn.yml\")")
	fs.StringVar(&opts.mapPath, "m", "", "Shorthand for -map-file")
	fs.BoolVar(&opts.updateMap, "update-map", false, "Regenerate the fqcn map even if the cache exists")
	fs.BoolVar(&opts.updateMap, "u", false, "Shorthand for -update-map")
	fs.BoolVar(&opts.history, "history", false, "Record run totals in the history database")
	fs.StringVar(&opts.historyPath, "history-path", "", "Path of the history database (default \"fqcnfix-history.db\")")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	opts.args = fs.Args()
	return opts, nil
}
