package main

import "platingreport/internal/cli"

func main() {
	cli.Execute()
}
