package main

import "github.com/cliprelay/publishbot/cmd"

func main() {
	cmd.Execute()
}
