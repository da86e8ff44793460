// Command librecur manages recurring household tasks from the command line.
package main

import "os"

func main() {
	if err := newApp().rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
