package main

import "github.com/propvisor/propvisor-cli/cmd"

func main() {
	cmd.Execute()
}
