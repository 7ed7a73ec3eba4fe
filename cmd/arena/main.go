package main

import (
	"os"

	"github.com/wonny/predictarena/cmd/arena/commands"
)

// main is the entry point for the arena CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/arena [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
