package main

import (
	"github.com/joho/godotenv"
	_ "go.uber.org/automaxprocs"

	"github.com/lexcodex/codetune/app/cmd"
)

func main() {
	// Missing .env is fine; env vars then come from the process.
	_ = godotenv.Load()
	cmd.Execute()
}
