package main

import "github.com/Myst1-Dev1/Car-Retal-Api/cmd/rentalweb/command"

func main() {
	command.Execute()
}
