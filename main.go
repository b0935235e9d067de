package main

import "planpilot/cmd"

func main() {
	cmd.Execute()
}
