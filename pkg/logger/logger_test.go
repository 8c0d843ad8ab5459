package logger_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/semtab/linker/pkg/logger"
)

func TestColorHandlerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(logger.NewColorHandler(&buf, slog.LevelInfo))

	log.Debug("hidden")
	log.Info("visible", "k", "v")
	log.Error("broken")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug record should be filtered at info level")
	}
	if !strings.Contains(out, "visible") || !strings.Contains(out, "k=v") {
		t.Errorf("info record missing from output: %q", out)
	}
	if !strings.Contains(out, "\033[31m") {
		t.Error("error record should be colored red")
	}
}

func TestColorHandlerPersistHighlight(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(logger.NewColorHandler(&buf, slog.LevelInfo))

	log.Info("Persisting annotated table", "table", "tab-1")

	if !strings.Contains(buf.String(), "\033[32m") {
		t.Error("persistence message should be colored green")
	}
}

func TestColorHandlerWithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(logger.NewColorHandler(&buf, slog.LevelInfo))

	log.With("dataset", "Round1").WithGroup("table").Info("annotating", "id", "tab-1")

	out := buf.String()
	if !strings.Contains(out, "dataset=Round1") {
		t.Errorf("inherited attr missing: %q", out)
	}
	if !strings.Contains(out, "table.id=tab-1") {
		t.Errorf("grouped attr missing: %q", out)
	}
}
