package main

import "github.com/hash066/bcm-approval/cmd"

func main() {
	cmd.Execute()
}
