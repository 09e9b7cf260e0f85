package main

import "var-manager/cmd"

func main() {
	cmd.Execute()
}
