package main

import "github.com/masmgr/modtimes-go/cmd"

func main() {
	cmd.Run()
}
