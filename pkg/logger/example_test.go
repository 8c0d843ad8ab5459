package logger_test

import (
	"log/slog"

	"github.com/semtab/linker/pkg/logger"
)

func ExampleNewDefaultLogger() {
	// Create a logger with default settings
	log := logger.NewDefaultLogger(slog.LevelDebug)

	// Log different levels
	log.Debug("This is a debug message")
	log.Info("This is an info message")
	log.Info("Persisting annotated table") // Will be green in terminal
	log.Warn("This is a warning message")  // Will be yellow in terminal
	log.Error("This is an error message")  // Will be red in terminal
}

func ExampleNewColorHandler() {
	log := logger.NewDefaultLogger(slog.LevelInfo)

	// Log with attributes
	log.Info("Annotating dataset", "dataset", "Round1", "workers", 4)
	log.Info("Table annotated and persisted", "table", "tab-42", "cells", 117) // Green
	log.Warn("Candidate lookup slow", "key", "paris", "duration", "2.5s")      // Yellow
	log.Error("Generator failed", "table", "tab-7", "error", "timeout")        // Red
}
