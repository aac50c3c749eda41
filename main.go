package main

import "github.com/KaramelBytes/dashkit/cmd"

func main() {
	cmd.Execute()
}
