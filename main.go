package main

import "zonal-tools/cmd"

func main() {
	cmd.Execute()
}
