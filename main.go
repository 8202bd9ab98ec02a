// Package main is the entry point for the dataio CLI application.
// It runs DeployR data input/output examples and declarative plans.
package main

import (
	"dataio/cli/cmd"
)

// main is the entry point for the dataio CLI application.
func main() {
	cmd.Execute()
}
