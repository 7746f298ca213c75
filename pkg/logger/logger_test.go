package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"debug level", func(c *Config) { c.Level = DebugLevel }, false},
		{"json format", func(c *Config) { c.Format = JSONFormat }, false},
		{"invalid level", func(c *Config) { c.Level = Level("trace2") }, true},
		{"invalid format", func(c *Config) { c.Format = Format("xml") }, true},
		{"invalid output", func(c *Config) { c.Output = Output("syslog") }, true},
		{"file output without path", func(c *Config) { c.Output = FileOutput; c.File = "" }, true},
		{"file output with path", func(c *Config) { c.Output = FileOutput; c.File = "run.log" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)

			err := config.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected a validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("nil config uses defaults", func(t *testing.T) {
		logger, err := NewLogger(nil)
		if err != nil {
			t.Fatalf("NewLogger(nil) error: %v", err)
		}
		if logger == nil {
			t.Fatal("expected a logger")
		}
	})

	t.Run("invalid config rejected", func(t *testing.T) {
		if _, err := NewLogger(&Config{Level: "loud"}); err == nil {
			t.Error("expected an error for an invalid level")
		}
	})

	t.Run("profile configs are valid", func(t *testing.T) {
		for name, config := range map[string]*Config{
			"default":    DefaultConfig(),
			"debug":      DebugConfig(),
			"production": ProductionConfig(),
		} {
			if err := config.Validate(); err != nil {
				t.Errorf("%s config invalid: %v", name, err)
			}
		}
	})
}

// readLogLines parses each line of a JSON log file into a map.
func readLogLines(t *testing.T, path string) []map[string]interface{} {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	var lines []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line is not valid JSON: %v (%q)", err, line)
		}
		lines = append(lines, entry)
	}
	return lines
}

func TestChainedFieldsAccumulate(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "run.log")

	logger, err := NewLogger(&Config{
		Level:  InfoLevel,
		Format: JSONFormat,
		Output: FileOutput,
		File:   logFile,
	})
	if err != nil {
		t.Fatalf("NewLogger error: %v", err)
	}

	logger.
		WithComponent("posting_service").
		WithField("run_id", "abc-123").
		WithFields(Fields{"total": 3}).
		Info("run completed")

	lines := readLogLines(t, logFile)
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1", len(lines))
	}

	entry := lines[0]
	if entry["component"] != "posting_service" {
		t.Errorf("component = %v, want posting_service", entry["component"])
	}
	if entry["run_id"] != "abc-123" {
		t.Errorf("run_id = %v, want abc-123", entry["run_id"])
	}
	if entry["total"] != float64(3) {
		t.Errorf("total = %v, want 3", entry["total"])
	}
	if entry["msg"] != "run completed" {
		t.Errorf("msg = %v, want run completed", entry["msg"])
	}
}

func TestLevelFiltering(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "run.log")

	logger, err := NewLogger(&Config{
		Level:  WarnLevel,
		Format: JSONFormat,
		Output: FileOutput,
		File:   logFile,
	})
	if err != nil {
		t.Fatalf("NewLogger error: %v", err)
	}

	logger.Debug("not this")
	logger.Info("nor this")
	logger.Warn("this one")
	logger.Error("and this")

	lines := readLogLines(t, logFile)
	if len(lines) != 2 {
		t.Fatalf("got %d log lines, want 2", len(lines))
	}
	if lines[0]["msg"] != "this one" || lines[1]["msg"] != "and this" {
		t.Errorf("unexpected messages: %v", lines)
	}
}

func TestGlobalLogger(t *testing.T) {
	original := GetGlobalLogger()
	defer SetGlobalLogger(original)

	replacement, err := NewLogger(DefaultConfig())
	if err != nil {
		t.Fatalf("NewLogger error: %v", err)
	}

	SetGlobalLogger(replacement)
	if GetGlobalLogger() != replacement {
		t.Error("global logger not replaced")
	}
}

func TestProgressTracker(t *testing.T) {
	logger, _ := NewLogger(DefaultConfig())

	t.Run("stats reflect counters", func(t *testing.T) {
		tracker := NewProgressTracker(ProgressConfig{
			Operation: "payment_matching",
			Total:     10,
			Logger:    logger,
		})

		tracker.Increment()
		tracker.Add(3)
		tracker.Update(8)

		stats := tracker.GetStats()
		if stats.Current != 8 {
			t.Errorf("Current = %d, want 8", stats.Current)
		}
		if stats.Total != 10 {
			t.Errorf("Total = %d, want 10", stats.Total)
		}
		if stats.Percentage != 80.0 {
			t.Errorf("Percentage = %v, want 80.0", stats.Percentage)
		}

		tracker.Complete()
	})

	t.Run("unknown total", func(t *testing.T) {
		tracker := NewProgressTracker(ProgressConfig{
			Operation: "streaming",
			Logger:    logger,
		})
		tracker.Add(5)

		stats := tracker.GetStats()
		if stats.Percentage != 0 {
			t.Errorf("Percentage = %v, want 0 when total is unknown", stats.Percentage)
		}
		if !strings.Contains(stats.String(), "5 processed") {
			t.Errorf("String() = %q", stats.String())
		}
	})

	t.Run("default interval applied", func(t *testing.T) {
		tracker := NewProgressTracker(ProgressConfig{Operation: "x", Logger: logger})
		if tracker.logInterval != 5*time.Second {
			t.Errorf("logInterval = %v, want 5s", tracker.logInterval)
		}
	})
}

func TestOperationLogger(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "run.log")

	logger, err := NewLogger(&Config{
		Level:  InfoLevel,
		Format: JSONFormat,
		Output: FileOutput,
		File:   logFile,
	})
	if err != nil {
		t.Fatalf("NewLogger error: %v", err)
	}

	op := NewOperationLogger("posting_run", logger)
	op.WithField("bank_file", "bank.csv")
	op.Step("loading")
	op.Success("posting run finished")

	lines := readLogLines(t, logFile)
	if len(lines) != 3 {
		t.Fatalf("got %d log lines, want 3", len(lines))
	}

	step := lines[1]
	if step["step"] != "loading" || step["bank_file"] != "bank.csv" {
		t.Errorf("step entry = %v", step)
	}

	final := lines[2]
	if final["status"] != "success" {
		t.Errorf("status = %v, want success", final["status"])
	}
	if _, ok := final["duration"]; !ok {
		t.Error("final entry missing duration")
	}
}
