package main

import "github.com/usereml/lightecho-stellar-oracle/internal/cli"

func main() {
	cli.Execute()
}
