// CLAUDE:SUMMARY socialconnect CLI: serve the API, run batch detection, import CSV files and query the classifier from the shell.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
