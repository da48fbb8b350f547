package main

import "github.com/frahmantamala/personal-finance/cmd"

func main() {
	cmd.Execute()
}
