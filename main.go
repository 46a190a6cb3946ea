package main

import "github.com/kozaktomas/photobook/cmd"

func main() {
	cmd.Execute()
}
