package main

import "github.com/qs-lzh/coaster-review/cmd/coaster-review/commands"

func main() {
	commands.Execute()
}
