package krx

import (
	"errors"
	"testing"
	"time"

	"krx-supply-oscillator/internal/domain"
)

func TestNormalizeDate(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"2024/01/05": "20240105",
		"2024-01-05": "20240105",
		"20240105":   "20240105",
	}
	for in, want := range cases {
		if got := NormalizeDate(in); got != want {
			t.Fatalf("NormalizeDate(%q) = %q want %q", in, got, want)
		}
	}
}

func TestValidateDate(t *testing.T) {
	t.Parallel()

	if err := ValidateDate("20240105"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var invalid *domain.InvalidInputError
	for _, bad := range []string{"2024015", "202401055", "20240230", "2024/1/5", "18991231", "21500101", "abcdefgh"} {
		err := ValidateDate(bad)
		if !errors.As(err, &invalid) {
			t.Fatalf("ValidateDate(%q): expected InvalidInputError, got %v", bad, err)
		}
	}
}

func TestValidateDateRangeOrdering(t *testing.T) {
	t.Parallel()

	if err := ValidateDateRange("20240101", "20240131"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateDateRange("20240101", "20240101"); err != nil {
		t.Fatalf("single-day range: unexpected error: %v", err)
	}

	var invalid *domain.InvalidInputError
	if err := ValidateDateRange("20240201", "20240101"); !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidInputError for inverted range, got %v", err)
	}
}

func TestDateChunksSingleWithinLimit(t *testing.T) {
	t.Parallel()

	chunks := dateChunks("20240101", "20241231")
	if len(chunks) != 1 {
		t.Fatalf("expected single chunk, got %d", len(chunks))
	}
	if chunks[0] != [2]string{"20240101", "20241231"} {
		t.Fatalf("unexpected chunk: %v", chunks[0])
	}
}

func TestDateChunksCoverLongRangeContiguously(t *testing.T) {
	t.Parallel()

	start, end := "20200101", "20231231"
	chunks := dateChunks(start, end)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks for a 4-year range, got %d", len(chunks))
	}
	if chunks[0][0] != start {
		t.Fatalf("first chunk starts at %s, want %s", chunks[0][0], start)
	}
	if chunks[len(chunks)-1][1] != end {
		t.Fatalf("last chunk ends at %s, want %s", chunks[len(chunks)-1][1], end)
	}
	for i, chunk := range chunks {
		cs, _ := time.Parse(dateLayout, chunk[0])
		ce, _ := time.Parse(dateLayout, chunk[1])
		if ce.Before(cs) {
			t.Fatalf("chunk %d inverted: %v", i, chunk)
		}
		if days := int(ce.Sub(cs).Hours() / 24); days > maxPeriodDays {
			t.Fatalf("chunk %d spans %d days", i, days)
		}
		if i > 0 {
			prevEnd, _ := time.Parse(dateLayout, chunks[i-1][1])
			if !cs.Equal(prevEnd.AddDate(0, 0, 1)) {
				t.Fatalf("chunk %d not contiguous: %s after %s", i, chunk[0], chunks[i-1][1])
			}
		}
	}
}
