package database

import (
	"testing"
	"time"
)

// Repository methods require a live database; this covers the pure helpers.
func TestNullableTime(t *testing.T) {
	t.Parallel()

	if got := nullableTime(nil); got.Valid {
		t.Error("nullableTime(nil).Valid = true, want false")
	}

	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	got := nullableTime(&at)
	if !got.Valid {
		t.Fatal("nullableTime(&at).Valid = false, want true")
	}
	if !got.Time.Equal(at) {
		t.Errorf("nullableTime(&at).Time = %v, want %v", got.Time, at)
	}
}
