// Command server runs the primary to-do backend: user and task CRUD,
// authentication, lifecycle event publishing, and the due-soon reminder
// scanner.
package main

import (
	"log"

	"github.com/huzaifanaeem1/todostream/internal/config"
	"github.com/huzaifanaeem1/todostream/internal/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Setup(cfg.Server.LogLevel)

	app, err := newApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
