package models

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestScrapeError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ScrapeError
		want string
	}{
		{"without cause", NewScrapeError(ErrCodeSelectorTimeout, "container not found", nil), "SELECTOR_TIMEOUT: container not found"},
		{"with cause", NewScrapeError(ErrCodeNavigation, "goto failed", errors.New("dns")), "NAVIGATION_FAILED: goto failed: dns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHasCode(t *testing.T) {
	inner := NewScrapeError(ErrCodeTimeout, "deadline", context.DeadlineExceeded)
	outer := NewScrapeError(ErrCodeSelectorTimeout, "container not found", inner)
	wrapped := fmt.Errorf("stage: %w", outer)

	if !HasCode(wrapped, ErrCodeSelectorTimeout) {
		t.Error("expected outer code to match through fmt wrapping")
	}
	if !HasCode(wrapped, ErrCodeTimeout) {
		t.Error("expected nested code to match")
	}
	if HasCode(wrapped, ErrCodeNavigation) {
		t.Error("unexpected match for absent code")
	}
	if !errors.Is(wrapped, context.DeadlineExceeded) {
		t.Error("expected Unwrap chain to reach context.DeadlineExceeded")
	}
	if HasCode(errors.New("plain"), ErrCodeInternal) {
		t.Error("plain errors carry no code")
	}
	if HasCode(nil, ErrCodeInternal) {
		t.Error("nil carries no code")
	}
}

func TestAsScrapeError(t *testing.T) {
	se := AsScrapeError(errors.New("boom"))
	if se.Code != ErrCodeInternal {
		t.Errorf("Code = %q, want %q", se.Code, ErrCodeInternal)
	}

	orig := NewScrapeError(ErrCodeSerialization, "page html", nil)
	if got := AsScrapeError(fmt.Errorf("x: %w", orig)); got != orig {
		t.Error("expected the wrapped ScrapeError to be returned as-is")
	}
}
