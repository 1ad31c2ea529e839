package main

import "corpora/cmd"

func main() {
	cmd.Execute()
}
