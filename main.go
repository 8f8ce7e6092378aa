package main

import "github.com/ritmolabs/ritmo/cmd"

func main() {
	cmd.Execute()
}
