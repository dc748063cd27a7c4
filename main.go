package main

import "aisearch/cmd"

func main() {
	cmd.Execute()
}
