package main

import (
	"log/slog"
	"os"

	"github.com/bensuskins/habit-hub/internal/commands"
)

func main() {
	if err := commands.New().Execute(); err != nil {
		slog.Error("habit-hub failed", "error", err)
		os.Exit(1)
	}
}
