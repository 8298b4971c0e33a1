package correlate

import (
	"testing"
	"time"

	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/model"
)

func reading(t *testing.T, ts time.Time, v float64) model.GlucoseReading {
	t.Helper()
	r, err := model.NewGlucoseReading(ts, v, model.DeviceDexcom)
	if err != nil {
		t.Fatalf("fixture reading: %v", err)
	}
	return r
}

func TestWindowBoundsInclusive(t *testing.T) {
	anchor := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	stream := []model.GlucoseReading{
		reading(t, anchor.Add(-1*time.Second), 90),          // just before lower bound
		reading(t, anchor, 100),                             // exactly at +0
		reading(t, anchor.Add(60*time.Minute), 150),         // interior
		reading(t, anchor.Add(120*time.Minute), 160),        // exactly at +120
		reading(t, anchor.Add(120*time.Minute+time.Second), 170), // just after upper bound
	}

	got := Window(anchor, stream, 0, 120)
	if len(got) != 3 {
		t.Fatalf("expected 3 events in [0,120] window, got %d", len(got))
	}
	if got[0].Value != 100 || got[2].Value != 160 {
		t.Fatalf("boundary events missing: got %v", got)
	}
}

func TestWindowPreservesOrderAndCompleteness(t *testing.T) {
	anchor := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var stream []model.GlucoseReading
	for m := 0; m <= 120; m += 5 {
		stream = append(stream, reading(t, anchor.Add(time.Duration(m)*time.Minute), 100+float64(m)))
	}

	got := Window(anchor, stream, 0, 120)
	if len(got) != len(stream) {
		t.Fatalf("expected all %d events, got %d", len(stream), len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.Before(got[i-1].Timestamp) {
			t.Fatalf("order not preserved at index %d", i)
		}
	}
}

func TestWindowNegativeOffsets(t *testing.T) {
	anchor := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	stream := []model.InsulinEvent{}
	for _, m := range []int{-45, -30, -10, 0, 10, 30, 45} {
		ev, err := model.NewInsulinEvent(anchor.Add(time.Duration(m)*time.Minute), model.InsulinBolus, 2)
		if err != nil {
			t.Fatalf("fixture insulin: %v", err)
		}
		stream = append(stream, ev)
	}

	got := Window(anchor, stream, -30, 30)
	if len(got) != 5 {
		t.Fatalf("expected 5 events in [-30,30] window, got %d", len(got))
	}
}

func TestWindowEmptyStream(t *testing.T) {
	anchor := time.Unix(0, 0)
	if got := Window(anchor, []model.CarbEvent(nil), 0, 120); got != nil {
		t.Fatalf("expected nil for empty stream, got %v", got)
	}
}
