package main

import (
	"github.com/joho/godotenv"

	"marks/internal/cli"
)

func main() {
	// Optional .env for OLLAMA_URL and friends; absence is fine.
	_ = godotenv.Load()
	cli.Execute()
}
