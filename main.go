package main

import "github.com/pipelab/multishot/cmd"

func main() {
	cmd.Execute()
}
