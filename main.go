package main

import "github.com/nextlevelbuilder/tgvault/cmd"

func main() {
	cmd.Execute()
}
