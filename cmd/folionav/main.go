// Command folionav serves a portfolio page whose navigation bar is driven
// from the server, and previews it in the terminal.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
