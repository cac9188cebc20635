package main

import "github.com/tenderloom/tenderloom/cmd"

func main() {
	cmd.Execute()
}
