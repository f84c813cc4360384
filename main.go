package main

import "github.com/diogo/orbchat/internal/commands"

func main() {
	commands.Execute()
}
