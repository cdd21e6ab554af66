package main

import "github.com/tahopen/tahopen-hadoop-shims/internal/cli"

func main() {
	cli.Execute()
}
