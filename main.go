package main

import (
	"log"

	"github.com/helpdeskhq/threadbot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
