package main

import "github.com/suderio/quantum-dungeon/cmd"

func main() {
	cmd.Execute()
}
