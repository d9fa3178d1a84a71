package main

import "github.com/andrescamacho/excavator-go/internal/adapters/cli"

func main() {
	cli.Execute()
}
