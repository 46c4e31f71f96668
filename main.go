package main

import "wfmu/cmd"

func main() {
	cmd.Execute()
}
