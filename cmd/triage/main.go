package main

import (
	"os"
)

// Version and Build are set at link time via -ldflags.
var (
	Version = "dev"
	Build   = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
