package main

import "librarydesk/cmd/libraryctl/commands"

func main() {
	commands.Execute()
}
