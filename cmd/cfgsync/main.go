// cfgsync keeps an in-memory document and a file on disk in sync.
package main

import (
	"os"

	"github.com/hupe1980/cfgsync/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
