package main

import "github.com/shaneholloman/concertus/cmd"

func main() {
	cmd.Execute()
}
