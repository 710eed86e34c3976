package krx

import (
	"fmt"
	"strings"
	"time"

	"krx-supply-oscillator/internal/domain"
)

const dateLayout = "20060102"

// maxPeriodDays is the largest date span certain reports accept in a single
// call; longer ranges come back as an INVALIDPERIOD2 HTTP 400.
const maxPeriodDays = 365

// NormalizeDate strips the separators KRX responses sometimes carry
// ("2024/01/05", "2024-01-05") down to the canonical 8-digit form.
func NormalizeDate(raw string) string {
	s := strings.ReplaceAll(raw, "/", "")
	return strings.ReplaceAll(s, "-", "")
}

// ValidateDate checks the canonical yyyyMMdd form, including calendar-correct
// day-of-month bounds.
func ValidateDate(date string) error {
	if len(date) != 8 {
		return &domain.InvalidInputError{Reason: fmt.Sprintf("date %q: expected yyyyMMdd", date)}
	}
	t, err := time.Parse(dateLayout, date)
	if err != nil || t.Format(dateLayout) != date {
		return &domain.InvalidInputError{Reason: fmt.Sprintf("date %q: expected yyyyMMdd", date)}
	}
	if y := t.Year(); y < 1990 || y > 2100 {
		return &domain.InvalidInputError{Reason: fmt.Sprintf("date %q: year out of range", date)}
	}
	return nil
}

// ValidateDateRange checks both endpoints and their ordering.
func ValidateDateRange(startDate, endDate string) error {
	if err := ValidateDate(startDate); err != nil {
		return err
	}
	if err := ValidateDate(endDate); err != nil {
		return err
	}
	if startDate > endDate {
		return &domain.InvalidInputError{
			Reason: fmt.Sprintf("start date %s after end date %s", startDate, endDate),
		}
	}
	return nil
}

// dateChunks splits [startDate, endDate] into consecutive sub-ranges of at
// most maxPeriodDays each. Ranges within the limit come back as a single
// chunk. Inputs are assumed validated.
func dateChunks(startDate, endDate string) [][2]string {
	start, _ := time.Parse(dateLayout, startDate)
	end, _ := time.Parse(dateLayout, endDate)

	if end.Sub(start) <= maxPeriodDays*24*time.Hour {
		return [][2]string{{startDate, endDate}}
	}

	var chunks [][2]string
	chunkStart := start
	for !chunkStart.After(end) {
		chunkEnd := chunkStart.AddDate(0, 0, maxPeriodDays)
		if chunkEnd.After(end) {
			chunkEnd = end
		}
		chunks = append(chunks, [2]string{chunkStart.Format(dateLayout), chunkEnd.Format(dateLayout)})
		chunkStart = chunkEnd.AddDate(0, 0, 1)
	}
	return chunks
}
