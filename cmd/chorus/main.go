// cmd/chorus/main.go
package main

import (
	cmd "github.com/chorus-cli/chorus/internal/cli"
)

// main starts the chorus CLI application by delegating to the
// cobra root command defined in the cli package. It does not
// take any arguments and does not return a value.
func main() {
	cmd.Execute()
}
