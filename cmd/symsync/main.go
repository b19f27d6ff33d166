package main

import "github.com/tkrause/symsync/internal/cli"

func main() {
	cli.Execute()
}
