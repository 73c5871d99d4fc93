package main

import "queuectl/cmd"

func main() {
	cmd.Execute()
}
