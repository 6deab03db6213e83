package main

import "github.gatech.edu/ECEInnovation/rv32ias/cmd"

func main() {
	cmd.Execute()
}
