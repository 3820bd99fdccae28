package main

import "midi-live-vis/cmd"

func main() {
	cmd.Execute()
}
