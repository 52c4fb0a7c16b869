package main

import "github.com/permafrost-sh/permafrost/cmd/permafrost/cmd"

func main() {
	cmd.Execute()
}
