// Package main is the entry point for discogs-alert.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/donaldgifford/discogs-alert/cmd/discogs-alert/cmd"
)

func main() {
	// A missing .env is fine; settings then come from the real environment.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
