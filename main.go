package main

import "github.com/lepinkainen/mensa/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
