package main

import "github.com/frahmantamala/safety-management/cmd"

func main() {
	cmd.Execute()
}
