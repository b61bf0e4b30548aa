package main

import "github.com/waveline/timeline/cmd"

func main() {
	cmd.Execute()
}
