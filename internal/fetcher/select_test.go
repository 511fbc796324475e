package fetcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/train-countdown/countdown/internal/ptv"
)

func TestSelect(t *testing.T) {
	departures := []ptv.Departure{
		{RunRef: "a", DirectionID: 2, ScheduledDeparture: at(10 * time.Second)},
		{RunRef: "b", DirectionID: 1},
		{RunRef: "c", DirectionID: 1, ScheduledDeparture: at(300 * time.Second)},
		{RunRef: "d", DirectionID: 1, ScheduledDeparture: at(200 * time.Second), EstimatedDeparture: at(100 * time.Second)},
	}

	tests := []struct {
		name      string
		direction int
		strategy  Strategy
		wantRun   string
		wantAfter time.Duration
		wantOK    bool
	}{
		{"first match in service order", 1, SelectFirst, "c", 300 * time.Second, true},
		{"earliest uses estimated time", 1, SelectEarliest, "d", 100 * time.Second, true},
		{"other direction", 2, SelectFirst, "a", 10 * time.Second, true},
		{"no match", 7, SelectFirst, "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dep, when, ok := Select(departures, tt.direction, tt.strategy)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.wantRun, dep.RunRef)
			assert.Equal(t, base.Add(tt.wantAfter), when)
		})
	}
}

func TestSelectSkipsMatchWithoutTimes(t *testing.T) {
	departures := []ptv.Departure{
		{RunRef: "untimed", DirectionID: 1},
		{RunRef: "next", DirectionID: 1, ScheduledDeparture: at(240 * time.Second)},
	}

	for _, strategy := range []Strategy{SelectFirst, SelectEarliest} {
		t.Run(string(strategy), func(t *testing.T) {
			dep, when, ok := Select(departures, 1, strategy)
			assert.True(t, ok)
			assert.Equal(t, "next", dep.RunRef)
			assert.Equal(t, base.Add(240*time.Second), when)
		})
	}

	_, _, ok := Select(departures[:1], 1, SelectFirst)
	assert.False(t, ok)
}

func TestSelectEmpty(t *testing.T) {
	_, _, ok := Select(nil, 1, SelectEarliest)
	assert.False(t, ok)
}
