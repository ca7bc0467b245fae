package main

import "github.com/KaramelBytes/pkloom-cli/cmd"

func main() {
	cmd.Execute()
}
