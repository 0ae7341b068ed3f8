package main

import "github.com/f43a9a/warifuri/cmd"

func main() {
	cmd.Execute()
}
