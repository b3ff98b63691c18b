package main

import "github.com/mcoot/wyrgame/internal/cli"

func main() {
	cli.Execute()
}
