// # cmd/fqcnfix/main.go
package main

import (
	"os"

	"fqcnfix/internal/ui/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
