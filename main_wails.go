package main

import (
	"log"
	"os"

	"Hauler/app"
)

func main() {
	logger := log.New(os.Stderr, "[Hauler] ", log.LstdFlags|log.Lshortfile)
	if err := app.Run(); err != nil {
		logger.Printf("app exited with error: %v", err)
		os.Exit(1)
	}
}
