// The main package for the enrichd executable.
package main

import (
	"github.com/riverline/enrichd/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
