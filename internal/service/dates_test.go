package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAuctionDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{
			name:  "numeric swiss format",
			input: "15.06.2024",
			want:  time.Date(2024, 6, 15, 0, 0, 0, 0, time.Local),
			ok:    true,
		},
		{
			name:  "numeric single digit day and month",
			input: "3.7.2024",
			want:  time.Date(2024, 7, 3, 0, 0, 0, 0, time.Local),
			ok:    true,
		},
		{
			name:  "numeric embedded in sentence",
			input: "Versteigerung am 15.06.2024 um 14:00 Uhr",
			want:  time.Date(2024, 6, 15, 0, 0, 0, 0, time.Local),
			ok:    true,
		},
		{
			name:  "german month name",
			input: "15. März 2024",
			want:  time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local),
			ok:    true,
		},
		{
			name:  "german month abbreviation",
			input: "1. Dez. 2024",
			want:  time.Date(2024, 12, 1, 0, 0, 0, 0, time.Local),
			ok:    true,
		},
		{
			name:  "french month name",
			input: "15 juillet 2024",
			want:  time.Date(2024, 7, 15, 0, 0, 0, 0, time.Local),
			ok:    true,
		},
		{
			name:  "french month with accent",
			input: "2 février 2024",
			want:  time.Date(2024, 2, 2, 0, 0, 0, 0, time.Local),
			ok:    true,
		},
		{
			name:  "iso date",
			input: "2024-06-15",
			want:  time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "case insensitive month",
			input: "15. MÄRZ 2024",
			want:  time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local),
			ok:    true,
		},
		{
			name:  "empty",
			input: "",
			ok:    false,
		},
		{
			name:  "free text",
			input: "nach Vereinbarung",
			ok:    false,
		},
		{
			name:  "unknown month name",
			input: "15. Frimaire 2024",
			ok:    false,
		},
		{
			name:  "impossible day",
			input: "32.01.2024",
			ok:    false,
		},
		{
			name:  "impossible month",
			input: "15.13.2024",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAuctionDate(tt.input)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
			}
		})
	}
}

func TestMergeTime(t *testing.T) {
	date := time.Date(2024, 6, 15, 0, 0, 0, 0, time.Local)

	assert.Equal(t, time.Date(2024, 6, 15, 14, 30, 0, 0, time.Local), mergeTime(date, "14:30"))
	assert.Equal(t, date, mergeTime(date, ""))
	assert.Equal(t, date, mergeTime(date, "um zwei Uhr"))
}
