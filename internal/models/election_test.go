package models

import (
	"testing"
	"time"
)

func TestElectionStatusAt(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 3, 17, 0, 0, 0, time.UTC)
	election := &Election{StartDate: start, EndDate: end}

	cases := []struct {
		name string
		now  time.Time
		want ElectionStatus
	}{
		{"before window", start.Add(-time.Minute), ElectionStatusUpcoming},
		{"at start", start, ElectionStatusActive},
		{"mid window", start.Add(24 * time.Hour), ElectionStatusActive},
		{"at end", end, ElectionStatusActive},
		{"after window", end.Add(time.Second), ElectionStatusCompleted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := election.StatusAt(tc.now); got != tc.want {
				t.Errorf("StatusAt(%s) = %s, want %s", tc.now, got, tc.want)
			}
		})
	}
}
