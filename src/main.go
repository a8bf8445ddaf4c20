package main

import "rfpdesk-server/src/cmd"

func main() {
	cmd.Execute()
}
