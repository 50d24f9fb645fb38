package main

import "doelab/internal/cli"

func main() {
	cli.Execute()
}
