// Command permctl inspects and edits role page permissions from a terminal.
//
//	permctl show
//	permctl grant advisor reports billing
//	permctl restrict billing --dry-run
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
