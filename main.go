package main

import "gigmatch/cmd"

func main() {
	cmd.Execute()
}
