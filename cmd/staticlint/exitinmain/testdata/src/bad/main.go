package main

import (
	"log"
	"os"
)

func main() {
	if len(os.Args) > 3 {
		log.Fatalf("too many args: %d", len(os.Args)) // want `log.Fatalf called directly in main`
	}
	defer func() { os.Exit(3) }()
	os.Exit(1) // want `os.Exit called directly in main`
}
