// Command ragstore indexes documents into a local vector store and answers
// questions from them.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/ragstore/internal/adapters/driving/cli"
)

func main() {
	// A .env file in the working directory may supply API keys.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
