package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		category ErrorCategory
		expected int
	}{
		{"file errors", CategoryFile, 2},
		{"parse errors", CategoryParse, 3},
		{"validation errors", CategoryValidation, 3},
		{"configuration errors", CategoryConfiguration, 4},
		{"matching errors", CategoryMatching, 5},
		{"internal errors", CategoryInternal, 5},
		{"unknown category", ErrorCategory("other"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &PostingError{Category: tt.category}
			if got := err.GetExitCode(); got != tt.expected {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	t.Run("message only", func(t *testing.T) {
		err := New(CategoryFile, CodeFileNotFound, "file not found: bank.csv")
		if err.Error() != "file not found: bank.csv" {
			t.Errorf("Error() = %q", err.Error())
		}
	})

	t.Run("suggestion appended", func(t *testing.T) {
		err := New(CategoryFile, CodeFileNotFound, "file not found: bank.csv").
			WithSuggestion("check the path")

		want := "file not found: bank.csv (suggestion: check the path)"
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
	})

	t.Run("context accumulates", func(t *testing.T) {
		err := New(CategoryParse, CodeInvalidData, "bad row").
			WithContext("file", "bank.csv").
			WithContext("line", 7)

		if err.Context["file"] != "bank.csv" {
			t.Errorf("Context[file] = %v", err.Context["file"])
		}
		if err.Context["line"] != 7 {
			t.Errorf("Context[line] = %v", err.Context["line"])
		}
	})
}

func TestConstructors(t *testing.T) {
	t.Run("file error", func(t *testing.T) {
		err := FileError(CodeFileNotFound, "/data/bank.csv", nil)

		if err.Category != CategoryFile || err.Code != CodeFileNotFound {
			t.Errorf("got %s/%s", err.Category, err.Code)
		}
		if !strings.Contains(err.Message, "/data/bank.csv") {
			t.Errorf("Message = %q, want the path included", err.Message)
		}
		if err.Suggestion == "" {
			t.Error("expected a suggestion")
		}
		if err.Context["file_path"] != "/data/bank.csv" {
			t.Errorf("Context[file_path] = %v", err.Context["file_path"])
		}
	})

	t.Run("parse error carries location", func(t *testing.T) {
		err := ParseError(CodeInvalidData, "bank.csv", 12, "Amount", "abc", nil)

		if err.Category != CategoryParse {
			t.Errorf("Category = %s, want %s", err.Category, CategoryParse)
		}
		if err.Context["line"] != 12 || err.Context["column"] != "Amount" {
			t.Errorf("Context = %v", err.Context)
		}
	})

	t.Run("validation error", func(t *testing.T) {
		err := ValidationError(CodeInvalidAmount, "amount", "12,3,4", nil)

		if err.Category != CategoryValidation || err.Code != CodeInvalidAmount {
			t.Errorf("got %s/%s", err.Category, err.Code)
		}
		if err.GetExitCode() != 3 {
			t.Errorf("GetExitCode() = %d, want 3", err.GetExitCode())
		}
	})

	t.Run("configuration error", func(t *testing.T) {
		err := ConfigurationError(CodeInvalidConfig, "workers", -1, nil)

		if err.Category != CategoryConfiguration {
			t.Errorf("Category = %s, want %s", err.Category, CategoryConfiguration)
		}
		if err.Context["setting"] != "workers" {
			t.Errorf("Context[setting] = %v", err.Context["setting"])
		}
	})

	t.Run("matching error", func(t *testing.T) {
		err := MatchingError(CodeMatchingFailed, "payment_matching", nil)

		if err.Category != CategoryMatching {
			t.Errorf("Category = %s, want %s", err.Category, CategoryMatching)
		}
		if !strings.Contains(err.Message, "payment_matching") {
			t.Errorf("Message = %q", err.Message)
		}
	})

	t.Run("cause is preserved", func(t *testing.T) {
		cause := fmt.Errorf("boom")
		err := InternalError(CodeUnexpectedError, "matching", cause)

		if err.Unwrap() != cause {
			t.Errorf("Unwrap() = %v, want the original cause", err.Unwrap())
		}
	})
}

func TestAsPostingError(t *testing.T) {
	t.Run("direct", func(t *testing.T) {
		err := New(CategoryFile, CodeFileNotFound, "missing")

		perr, ok := AsPostingError(err)
		if !ok || perr.Code != CodeFileNotFound {
			t.Errorf("AsPostingError = %v, %v", perr, ok)
		}
	})

	t.Run("wrapped in fmt chain", func(t *testing.T) {
		inner := New(CategoryParse, CodeMissingColumn, "no Amount column")
		wrapped := fmt.Errorf("loading bank file: %w", inner)

		perr, ok := AsPostingError(wrapped)
		if !ok {
			t.Fatal("posting error not found in chain")
		}
		if perr.Code != CodeMissingColumn {
			t.Errorf("Code = %s, want %s", perr.Code, CodeMissingColumn)
		}
	})

	t.Run("plain error", func(t *testing.T) {
		if _, ok := AsPostingError(fmt.Errorf("plain")); ok {
			t.Error("plain error reported as posting error")
		}
		if IsPostingError(fmt.Errorf("plain")) {
			t.Error("IsPostingError true for plain error")
		}
	})
}

func TestWrapIfNeeded(t *testing.T) {
	t.Run("nil passes through", func(t *testing.T) {
		if got := WrapIfNeeded(nil, CategoryParse, CodeInvalidData, "ignored"); got != nil {
			t.Errorf("WrapIfNeeded(nil) = %v, want nil", got)
		}
	})

	t.Run("existing posting error untouched", func(t *testing.T) {
		original := New(CategoryFile, CodeFileNotFound, "missing")
		got := WrapIfNeeded(original, CategoryParse, CodeInvalidData, "rewrapped")

		if got != original {
			t.Error("existing posting error was rewrapped")
		}
	})

	t.Run("plain error wrapped", func(t *testing.T) {
		got := WrapIfNeeded(fmt.Errorf("boom"), CategoryParse, CodeInvalidData, "row failed")

		if got.Category != CategoryParse || got.Code != CodeInvalidData {
			t.Errorf("got %s/%s", got.Category, got.Code)
		}
		if got.Message != "row failed" {
			t.Errorf("Message = %q", got.Message)
		}
	})
}

func TestErrorSummary(t *testing.T) {
	errs := []*PostingError{
		New(CategoryParse, CodeInvalidData, "bad row 3"),
		New(CategoryParse, CodeInvalidData, "bad row 9"),
		New(CategoryFile, CodeFileNotFound, "missing remittances"),
	}

	summary := NewErrorSummary(errs)

	t.Run("counts", func(t *testing.T) {
		if summary.Total != 3 {
			t.Errorf("Total = %d, want 3", summary.Total)
		}
		if summary.ByCategory[CategoryParse] != 2 {
			t.Errorf("parse count = %d, want 2", summary.ByCategory[CategoryParse])
		}
		if summary.ByCode[CodeFileNotFound] != 1 {
			t.Errorf("file_not_found count = %d, want 1", summary.ByCode[CodeFileNotFound])
		}
	})

	t.Run("category lookup", func(t *testing.T) {
		if !summary.HasCategory(CategoryFile) {
			t.Error("HasCategory(file) = false")
		}
		if summary.HasCategory(CategoryMatching) {
			t.Error("HasCategory(matching) = true")
		}
	})

	t.Run("exit code takes the highest", func(t *testing.T) {
		if got := summary.GetExitCode(); got != 3 {
			t.Errorf("GetExitCode() = %d, want 3", got)
		}
	})

	t.Run("message aggregates", func(t *testing.T) {
		msg := summary.Error()
		if !strings.Contains(msg, "3 errors occurred") {
			t.Errorf("Error() = %q", msg)
		}
	})

	t.Run("single error passes through", func(t *testing.T) {
		one := NewErrorSummary(errs[:1])
		if one.Error() != errs[0].Error() {
			t.Errorf("Error() = %q, want %q", one.Error(), errs[0].Error())
		}
	})

	t.Run("empty summary", func(t *testing.T) {
		empty := NewErrorSummary(nil)
		if empty.Error() != "no errors" {
			t.Errorf("Error() = %q", empty.Error())
		}
		if empty.GetExitCode() != 0 {
			t.Errorf("GetExitCode() = %d, want 0", empty.GetExitCode())
		}
	})
}
