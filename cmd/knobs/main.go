// Command knobs manages typed, validated configuration from the shell.
package main

import "github.com/mesh-intelligence/knobs/internal/cli"

func main() {
	cli.Execute()
}
