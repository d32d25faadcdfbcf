package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "workshop-config.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "invalid configuration" {
			t.Errorf("expected message 'invalid configuration', got %s", err.Message())
		}

		file, exists := err.Context().GetString("file")
		if !exists || file != "workshop-config.yaml" {
			t.Errorf("expected context file=workshop-config.yaml, got %v", file)
		}
	})

	t.Run("Error detection through wrapping", func(t *testing.T) {
		inner := NotebookError("malformed notebook").Build()
		wrapped := fmt.Errorf("process intro.ipynb: %w", inner)

		if !IsClassified(wrapped) {
			t.Error("expected wrapped error to be classified")
		}
		if !HasCategory(wrapped, CategoryNotebook) {
			t.Error("expected error to have notebook category")
		}
		if GetCategory(errors.New("plain")) != CategoryInternal {
			t.Error("expected unclassified errors to report internal category")
		}
		if !inner.IsFatal() {
			t.Error("expected notebook error to be fatal")
		}
	})

	t.Run("WithContext does not mutate the original", func(t *testing.T) {
		base := ArchiveError("zip failed").Build()
		derived := base.WithContext("path", "a.zip")

		if _, ok := base.Context().Get("path"); ok {
			t.Error("expected original context to be untouched")
		}
		if p, _ := derived.Context().GetString("path"); p != "a.zip" {
			t.Errorf("expected derived path a.zip, got %q", p)
		}
	})
}

func TestErrorBuilder(t *testing.T) {
	t.Run("Fluent API", func(t *testing.T) {
		originalErr := errors.New("permission denied")
		err := WrapError(originalErr, CategoryFileSystem, "write failed").
			Warning().
			WithContext("path", "docs/index.html").
			Build()

		if err.Severity() != SeverityWarning {
			t.Errorf("expected severity %s, got %s", SeverityWarning, err.Severity())
		}
		if !errors.Is(err, originalErr) {
			t.Error("expected error to wrap original error")
		}
	})

	t.Run("Convenience constructors", func(t *testing.T) {
		tests := []struct {
			name     string
			builder  *ErrorBuilder
			category ErrorCategory
		}{
			{"ConfigError", ConfigError("test"), CategoryConfig},
			{"ValidationError", ValidationError("test"), CategoryValidation},
			{"NotebookError", NotebookError("test"), CategoryNotebook},
			{"MarkdownError", MarkdownError("test"), CategoryMarkdown},
			{"ArchiveError", ArchiveError("test"), CategoryArchive},
			{"RenderError", RenderError("test"), CategoryRender},
			{"BuildError", BuildError("test"), CategoryBuild},
			{"FileSystemError", FileSystemError("test"), CategoryFileSystem},
			{"RuntimeError", RuntimeError("test"), CategoryRuntime},
			{"InternalError", InternalError("test"), CategoryInternal},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.builder.Build()
				if err.Category() != tt.category {
					t.Errorf("expected category %s, got %s", tt.category, err.Category())
				}
				if err.Severity() != SeverityFatal {
					t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
				}
			})
		}
	})
}

func TestErrorContext(t *testing.T) {
	ctx1 := make(ErrorContext)
	ctx1 = ctx1.Set("key1", "value1")
	ctx1 = ctx1.Set("shared", "original")

	ctx2 := make(ErrorContext)
	ctx2 = ctx2.Set("key2", "value2")
	ctx2 = ctx2.Set("shared", "overridden")

	merged := ctx1.Merge(ctx2)

	value1, _ := merged.GetString("key1")
	value2, _ := merged.GetString("key2")
	shared, _ := merged.GetString("shared")

	if value1 != "value1" || value2 != "value2" {
		t.Errorf("expected both keys present, got %q %q", value1, value2)
	}
	if shared != "overridden" {
		t.Errorf("expected shared=overridden, got %s", shared)
	}
	if _, ok := merged.Get("missing"); ok {
		t.Error("expected missing key to be absent")
	}
}
