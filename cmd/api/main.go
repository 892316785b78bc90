package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/cinetix/reservation-core/internal/app"
)

func main() {
	// A missing .env file is fine; flags and real env vars still apply.
	_ = godotenv.Load()

	err := app.Run()
	if err != nil {
		slog.Error("server terminated", "error", err)
		os.Exit(1)
	}
}
