package main

import "github.com/mcoot/crossword-extravaganza/internal/cli"

func main() {
	cli.Execute()
}
