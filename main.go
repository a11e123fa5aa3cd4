package main

import "github.com/example/hamprep/cmd"

func main() {
	cmd.Execute()
}
