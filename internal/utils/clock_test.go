package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		input   string
		hour    int
		minute  int
		wantErr bool
	}{
		{"09:00 AM", 9, 0, false},
		{"9:00 AM", 9, 0, false},
		{"12:30 PM", 12, 30, false},
		{"12:00 AM", 0, 0, false},
		{"11:45 pm", 23, 45, false},
		{"  10:15 AM  ", 10, 15, false},
		{"25:00", 0, 0, true},
		{"09:00", 0, 0, true},
		{"", 0, 0, true},
		{"half past nine", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			hour, minute, appErr := ParseClockTime(tt.input)
			if tt.wantErr {
				require.NotNil(t, appErr)
				assert.Equal(t, "scheduled_time", appErr.Field)
				return
			}
			require.Nil(t, appErr)
			assert.Equal(t, tt.hour, hour)
			assert.Equal(t, tt.minute, minute)
		})
	}
}

func TestCombineDateAndTime(t *testing.T) {
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	combined, appErr := CombineDateAndTime(date, "02:30 PM")
	require.Nil(t, appErr)
	assert.Equal(t, time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC), combined)
}

func TestCombineDateAndTime_PreservesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, loc)

	combined, appErr := CombineDateAndTime(date, "09:00 AM")
	require.Nil(t, appErr)
	assert.Equal(t, loc, combined.Location())
	assert.Equal(t, 9, combined.Hour())
}

func TestCombineDateAndTime_Invalid(t *testing.T) {
	_, appErr := CombineDateAndTime(time.Now(), "not a time")
	require.NotNil(t, appErr)
}
