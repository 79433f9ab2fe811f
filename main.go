package main

import "github.com/finassist/fin/cmd"

func main() {
	cmd.Execute()
}
