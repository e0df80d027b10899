package main

import "github.com/chazu/heartwood/pkg/cli"

func main() {
	cli.Execute()
}
