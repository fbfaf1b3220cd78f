package engine

import (
	"math"
	"testing"
	"time"

	"github.com/hachiko/animatch/internal/store"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, nil)
}

func TestRecordSearchFirstTime(t *testing.T) {
	e := testEngine(t)
	now := time.Now()

	if err := e.RecordSearch("u1", "mecha", now); err != nil {
		t.Fatalf("RecordSearch: %v", err)
	}

	rec, err := e.DB.GetTermDecay("u1", "mecha")
	if err != nil {
		t.Fatalf("GetTermDecay: %v", err)
	}
	if rec == nil {
		t.Fatal("expected decay record, got nil")
	}
	if rec.DecayFactor != 1.0 {
		t.Errorf("DecayFactor = %f, want 1.0", rec.DecayFactor)
	}
	if rec.SearchCount != 1 {
		t.Errorf("SearchCount = %d, want 1", rec.SearchCount)
	}
	if rec.LastSearchedAt != now.UnixMilli() {
		t.Errorf("LastSearchedAt = %d, want %d", rec.LastSearchedAt, now.UnixMilli())
	}
}

func TestRecordSearchDecaysAfterOneHour(t *testing.T) {
	e := testEngine(t)
	t0 := time.Now()

	e.RecordSearch("u1", "mecha", t0)
	if err := e.RecordSearch("u1", "mecha", t0.Add(time.Hour)); err != nil {
		t.Fatalf("RecordSearch: %v", err)
	}

	rec, _ := e.DB.GetTermDecay("u1", "mecha")
	want := math.Exp(-0.1) // ≈ 0.9048
	if math.Abs(rec.DecayFactor-want) > 1e-9 {
		t.Errorf("DecayFactor = %f, want %f", rec.DecayFactor, want)
	}
	if rec.SearchCount != 2 {
		t.Errorf("SearchCount = %d, want 2", rec.SearchCount)
	}
}

func TestRecordSearchExactFormula(t *testing.T) {
	e := testEngine(t)
	t0 := time.Now()

	e.RecordSearch("u1", "mecha", t0)
	deltas := []time.Duration{30 * time.Minute, 2 * time.Hour, 15 * time.Minute}

	expected := 1.0
	now := t0
	for _, d := range deltas {
		now = now.Add(d)
		if err := e.RecordSearch("u1", "mecha", now); err != nil {
			t.Fatalf("RecordSearch: %v", err)
		}
		expected *= math.Exp(-0.1 * d.Hours())
	}

	rec, _ := e.DB.GetTermDecay("u1", "mecha")
	if math.Abs(rec.DecayFactor-expected) > 1e-9 {
		t.Errorf("DecayFactor = %f, want %f", rec.DecayFactor, expected)
	}
	if rec.SearchCount != 4 {
		t.Errorf("SearchCount = %d, want 4", rec.SearchCount)
	}
}

func TestRecordSearchZeroDeltaKeepsFactor(t *testing.T) {
	e := testEngine(t)
	t0 := time.Now()

	e.RecordSearch("u1", "mecha", t0)
	e.RecordSearch("u1", "mecha", t0)

	rec, _ := e.DB.GetTermDecay("u1", "mecha")
	if rec.DecayFactor != 1.0 {
		t.Errorf("DecayFactor = %f, want 1.0 (Δt = 0)", rec.DecayFactor)
	}
	if rec.SearchCount != 2 {
		t.Errorf("SearchCount = %d, want 2", rec.SearchCount)
	}
}

func TestRecordSearchClampsClockRollback(t *testing.T) {
	e := testEngine(t)
	t0 := time.Now()

	e.RecordSearch("u1", "mecha", t0)
	// Clock skew: a later call with an earlier timestamp must not grow the factor.
	e.RecordSearch("u1", "mecha", t0.Add(-time.Hour))

	rec, _ := e.DB.GetTermDecay("u1", "mecha")
	if rec.DecayFactor != 1.0 {
		t.Errorf("DecayFactor = %f, want 1.0 (negative Δt clamped)", rec.DecayFactor)
	}
}

func TestRecordSearchStrictlyNonIncreasing(t *testing.T) {
	e := testEngine(t)
	now := time.Now()

	e.RecordSearch("u1", "mecha", now)
	prev := 1.0
	for i := 0; i < 5; i++ {
		now = now.Add(45 * time.Minute)
		e.RecordSearch("u1", "mecha", now)
		rec, _ := e.DB.GetTermDecay("u1", "mecha")
		if rec.DecayFactor >= prev {
			t.Errorf("DecayFactor %f did not decrease from %f", rec.DecayFactor, prev)
		}
		if rec.DecayFactor <= 0 {
			t.Errorf("DecayFactor %f left (0, +inf)", rec.DecayFactor)
		}
		prev = rec.DecayFactor
	}
}

func TestRecordSearchIndependentKeys(t *testing.T) {
	e := testEngine(t)
	now := time.Now()

	e.RecordSearch("u1", "mecha", now)
	e.RecordSearch("u1", "drama", now.Add(time.Hour))
	e.RecordSearch("u2", "mecha", now.Add(2*time.Hour))

	for _, tc := range []struct {
		user, term string
	}{{"u1", "mecha"}, {"u1", "drama"}, {"u2", "mecha"}} {
		rec, err := e.DB.GetTermDecay(tc.user, tc.term)
		if err != nil || rec == nil {
			t.Fatalf("GetTermDecay(%s, %s): %v / %v", tc.user, tc.term, rec, err)
		}
		if rec.DecayFactor != 1.0 || rec.SearchCount != 1 {
			t.Errorf("(%s, %s): factor=%f count=%d, want fresh record", tc.user, tc.term, rec.DecayFactor, rec.SearchCount)
		}
	}
}
