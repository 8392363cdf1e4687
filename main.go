package main

import "github.com/calcboard/calcboard/cmd"

func main() {
	cmd.Execute()
}
