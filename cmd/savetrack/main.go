package main

import "savetrack/internal/cli"

func main() {
	cli.Execute()
}
