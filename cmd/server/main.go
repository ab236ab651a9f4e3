package main

import "github.com/episteme/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
