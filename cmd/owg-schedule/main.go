package main

import "github.com/pfrederiksen/owg-schedule/internal/cli"

var version = "dev"

func main() {
	cli.Version = version
	cli.Execute()
}
