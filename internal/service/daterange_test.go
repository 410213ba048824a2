package service

import (
	"errors"
	"testing"
	"time"

	"marocpos/backend/internal/store"
)

func TestExpandBoundAppendsSuffixOnlyToBareDays(t *testing.T) {
	if got := expandBound("2024-03-01", startOfDaySuffix); got != "2024-03-01 00:00:00" {
		t.Fatalf("unexpected start bound: %q", got)
	}
	if got := expandBound("2024-03-01", endOfDaySuffix); got != "2024-03-01 23:59:59" {
		t.Fatalf("unexpected end bound: %q", got)
	}
	if got := expandBound("2024-03-01 14:30:00", endOfDaySuffix); got != "2024-03-01 14:30:00" {
		t.Fatalf("timestamp bound must be kept as-is, got %q", got)
	}
}

func TestParseBoundRejectsGarbage(t *testing.T) {
	if _, err := parseBound("yesterday", startOfDaySuffix); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestOptionalBoundEmptyMeansUnbounded(t *testing.T) {
	bound, err := optionalBound("  ", startOfDaySuffix)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bound != nil {
		t.Fatalf("expected nil bound for empty input, got %v", bound)
	}
}

func TestDayBoundsDefaultsToToday(t *testing.T) {
	now := time.Date(2024, 3, 5, 16, 45, 0, 0, time.UTC)

	day, from, to, err := dayBounds("", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if day != "2024-03-05" {
		t.Fatalf("expected today's label, got %q", day)
	}
	if from.Hour() != 0 || from.Minute() != 0 || from.Second() != 0 {
		t.Fatalf("expected midnight start, got %v", from)
	}
	if to.Hour() != 23 || to.Minute() != 59 || to.Second() != 59 {
		t.Fatalf("expected end-of-day close, got %v", to)
	}

	if _, _, _, err := dayBounds("05/03/2024", now); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for non ISO day, got %v", err)
	}
}
