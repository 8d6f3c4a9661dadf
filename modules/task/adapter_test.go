package task

import (
	"errors"
	"fmt"
	"testing"
)

func TestNormalizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			"flattened not found",
			fmt.Errorf("service call failed: %s", ErrNotFound.Error()),
			ErrNotFound,
		},
		{
			"flattened unauthorized",
			fmt.Errorf("service call failed: %s", ErrUnauthorized.Error()),
			ErrUnauthorized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeError("update", tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}

	t.Run("validation message recovers field and reason", func(t *testing.T) {
		flattened := fmt.Errorf("service call failed: validation failed: title: is required")
		got := normalizeError("create", flattened)

		var verr *ValidationError
		if !errors.As(got, &verr) {
			t.Fatalf("expected ValidationError, got %v", got)
		}
		if verr.Field != "title" || verr.Reason != "is required" {
			t.Errorf("expected title/is required, got %q/%q", verr.Field, verr.Reason)
		}
	})

	t.Run("unrelated errors pass through wrapped", func(t *testing.T) {
		// Messages that merely contain a sentinel-adjacent word must not
		// be reclassified.
		for _, msg := range []string{
			"redis: NOAUTH unauthorized access",
			"proxy rejected: connection unauthorized",
			"store corrupt: index not found",
		} {
			got := normalizeError("all", errors.New(msg))
			if errors.Is(got, ErrUnauthorized) || errors.Is(got, ErrNotFound) {
				t.Errorf("message %q misclassified as %v", msg, got)
			}
			if got == nil {
				t.Errorf("expected wrapped error for %q", msg)
			}
		}
	})
}
