package utils_test

import (
	"testing"
	"time"

	"github.com/mmdatafocus/retail_backend/utils"
)

func TestConvertToDateTruncatesInZone(t *testing.T) {
	// 18:30 UTC is 00:15 the next day in Kathmandu (+05:45).
	instant := time.Date(2026, 8, 30, 18, 30, 0, 0, time.UTC)
	got, err := utils.ConvertToDate(instant, "Asia/Kathmandu")
	if err != nil {
		t.Fatalf("ConvertToDate: %v", err)
	}
	if got.Year() != 2026 || got.Month() != time.August || got.Day() != 31 {
		t.Fatalf("date = %v, want 2026-08-31", got)
	}
	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 {
		t.Fatalf("not truncated to midnight: %v", got)
	}
}

func TestConvertToDateRejectsUnknownZone(t *testing.T) {
	if _, err := utils.ConvertToDate(time.Now(), "Mars/Olympus"); err == nil {
		t.Fatalf("unknown timezone accepted")
	}
}
