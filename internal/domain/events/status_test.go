package events

import (
	"testing"
	"time"
)

func TestStatusAt_BeforeStart_IsUpcoming(t *testing.T) {
	start := time.Date(2024, 6, 20, 19, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 20, 21, 0, 0, 0, time.UTC)
	now := time.Date(2024, 6, 20, 18, 30, 0, 0, time.UTC)

	st := StatusAt(now, start, end)
	if st.Phase != PhaseUpcoming {
		t.Fatalf("expected upcoming, got %s", st.Phase)
	}
	if st.CanAttend {
		t.Fatalf("upcoming must not be attendable")
	}
	if st.SecondsUntilStart == nil || *st.SecondsUntilStart != 1800 {
		t.Fatalf("expected 1800 seconds until start, got %v", st.SecondsUntilStart)
	}
	if st.SecondsUntilEnd != nil {
		t.Fatalf("upcoming must not report seconds until end")
	}
}

func TestStatusAt_InsideWindow_IsActive(t *testing.T) {
	start := time.Date(2024, 6, 20, 19, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 20, 21, 0, 0, 0, time.UTC)
	now := time.Date(2024, 6, 20, 19, 30, 0, 0, time.UTC)

	st := StatusAt(now, start, end)
	if st.Phase != PhaseActive {
		t.Fatalf("expected active, got %s", st.Phase)
	}
	if !st.CanAttend {
		t.Fatalf("active must be attendable")
	}
	if st.SecondsUntilEnd == nil || *st.SecondsUntilEnd != 5400 {
		t.Fatalf("expected 5400 seconds until end, got %v", st.SecondsUntilEnd)
	}
	if st.SecondsUntilStart != nil {
		t.Fatalf("active must not report seconds until start")
	}
}

func TestStatusAt_AfterEnd_IsEnded(t *testing.T) {
	start := time.Date(2024, 6, 20, 19, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 20, 21, 0, 0, 0, time.UTC)
	now := end.Add(1 * time.Second)

	st := StatusAt(now, start, end)
	if st.Phase != PhaseEnded {
		t.Fatalf("expected ended, got %s", st.Phase)
	}
	if st.CanAttend {
		t.Fatalf("ended must not be attendable")
	}
	if st.SecondsUntilStart != nil || st.SecondsUntilEnd != nil {
		t.Fatalf("ended must not report countdowns")
	}
}

func TestStatusAt_Boundaries_AreInclusive(t *testing.T) {
	start := time.Date(2024, 6, 20, 19, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 20, 21, 0, 0, 0, time.UTC)

	// now == start: ya empieza, attendable
	if st := StatusAt(start, start, end); st.Phase != PhaseActive || !st.CanAttend {
		t.Fatalf("now==start: expected active attendable, got %+v", st)
	}
	// now == end: todavía cuenta, attendable
	if st := StatusAt(end, start, end); st.Phase != PhaseActive || !st.CanAttend {
		t.Fatalf("now==end: expected active attendable, got %+v", st)
	}
	// un segundo después del end ya no
	if st := StatusAt(end.Add(time.Second), start, end); st.Phase != PhaseEnded {
		t.Fatalf("now==end+1s: expected ended, got %+v", st)
	}
}

func TestStatusAt_SubSecondRemainder_Truncates(t *testing.T) {
	start := time.Date(2024, 6, 20, 19, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 20, 21, 0, 0, 0, time.UTC)
	now := start.Add(-1500 * time.Millisecond)

	st := StatusAt(now, start, end)
	if st.SecondsUntilStart == nil || *st.SecondsUntilStart != 1 {
		t.Fatalf("expected truncation to 1 second, got %v", st.SecondsUntilStart)
	}
}
