package main

import "sqldash/cmd"

func main() {
	cmd.Execute()
}
