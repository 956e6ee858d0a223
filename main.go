package main

import "github.com/bkarpinos/shorty/cmd"

func main() {
	cmd.Execute()
}
