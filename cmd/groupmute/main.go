package main

import "github.com/groupmute/groupmute/internal/cli"

func main() {
	cli.Execute()
}
