package main

import "github.com/masmgr/commitgraph/cmd"

func main() {
	cmd.Run()
}
