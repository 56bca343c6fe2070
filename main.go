package main

import "github.com/skyezerfox/magma/cmd"

func main() {
	cmd.Execute()
}
