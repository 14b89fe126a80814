package main

import "github.com/frahmantamala/agency-ops/cmd"

func main() {
	cmd.Execute()
}
