package schedule_test

import (
	"math/rand"
	"testing"
	"time"

	"gymdesk/internal/domain/schedule"
)

func mustCombine(t *testing.T, date, clock string) time.Time {
	t.Helper()
	ts, err := schedule.CombineDateTime(date, clock)
	if err != nil {
		t.Fatalf("CombineDateTime(%s, %s): %v", date, clock, err)
	}
	return ts
}

func sched(t *testing.T, start, end string) schedule.Schedule {
	t.Helper()
	return schedule.Schedule{
		ID:              "sch-1",
		ClassID:         "cls-1",
		TrainerID:       "trn-1",
		Date:            "2024-01-10",
		StartTime:       mustCombine(t, "2024-01-10", start),
		EndTime:         mustCombine(t, "2024-01-10", end),
		MaxParticipants: 10,
		Status:          schedule.StatusScheduled,
	}
}

// TestCombineDateTime tests strict date/time parsing.
func TestCombineDateTime(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		clock   string
		wantErr error
	}{
		{name: "valid", date: "2024-01-10", clock: "09:00", wantErr: nil},
		{name: "bad date format", date: "10/01/2024", clock: "09:00", wantErr: schedule.ErrInvalidDate},
		{name: "bad time format", date: "2024-01-10", clock: "9am", wantErr: schedule.ErrInvalidTime},
		{name: "empty date", date: "", clock: "09:00", wantErr: schedule.ErrInvalidDate},
		{name: "empty time", date: "2024-01-10", clock: "", wantErr: schedule.ErrInvalidTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schedule.CombineDateTime(tt.date, tt.clock)
			if err != tt.wantErr {
				t.Errorf("CombineDateTime() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestSchedule_Validate tests validation of Schedule.
func TestSchedule_Validate(t *testing.T) {
	valid := sched(t, "09:00", "10:00")

	tests := []struct {
		name    string
		mutate  func(*schedule.Schedule)
		wantErr bool
	}{
		{name: "valid schedule", mutate: func(s *schedule.Schedule) {}, wantErr: false},
		{name: "empty class ID", mutate: func(s *schedule.Schedule) { s.ClassID = "" }, wantErr: true},
		{name: "empty trainer ID", mutate: func(s *schedule.Schedule) { s.TrainerID = "  " }, wantErr: true},
		{name: "bad date", mutate: func(s *schedule.Schedule) { s.Date = "Jan 10" }, wantErr: true},
		{name: "end equals start", mutate: func(s *schedule.Schedule) { s.EndTime = s.StartTime }, wantErr: true},
		{name: "end before start", mutate: func(s *schedule.Schedule) {
			s.StartTime, s.EndTime = s.EndTime, s.StartTime
		}, wantErr: true},
		{name: "zero capacity", mutate: func(s *schedule.Schedule) { s.MaxParticipants = 0 }, wantErr: true},
		{name: "counter above capacity", mutate: func(s *schedule.Schedule) { s.CurrentParticipants = 11 }, wantErr: true},
		{name: "negative counter", mutate: func(s *schedule.Schedule) { s.CurrentParticipants = -1 }, wantErr: true},
		{name: "bad status", mutate: func(s *schedule.Schedule) { s.Status = "pending" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Schedule.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestSchedule_Overlaps tests the three-way interval overlap predicate.
func TestSchedule_Overlaps(t *testing.T) {
	existing := sched(t, "09:00", "10:00")

	tests := []struct {
		name  string
		start string
		end   string
		want  bool
	}{
		{name: "identical interval", start: "09:00", end: "10:00", want: true},
		{name: "starts inside", start: "09:30", end: "10:30", want: true},
		{name: "ends inside", start: "08:30", end: "09:30", want: true},
		{name: "fully contains", start: "08:00", end: "11:00", want: true},
		{name: "fully contained", start: "09:15", end: "09:45", want: true},
		{name: "back to back before", start: "08:00", end: "09:00", want: false},
		{name: "back to back after", start: "10:00", end: "11:00", want: false},
		{name: "disjoint before", start: "07:00", end: "08:00", want: false},
		{name: "disjoint after", start: "11:00", end: "12:00", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := mustCombine(t, "2024-01-10", tt.start)
			end := mustCombine(t, "2024-01-10", tt.end)
			if got := existing.Overlaps(start, end); got != tt.want {
				t.Errorf("Overlaps(%s, %s) = %v, want %v", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

// TestSchedule_Overlaps_Random cross-checks the predicate against a plain
// half-open intersection test on randomly generated interval pairs.
func TestSchedule_Overlaps_Random(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	day := mustCombine(t, "2024-01-10", "06:00")

	for i := 0; i < 500; i++ {
		aStart := day.Add(time.Duration(rng.Intn(12*60)) * time.Minute)
		aEnd := aStart.Add(time.Duration(1+rng.Intn(4*60)) * time.Minute)
		bStart := day.Add(time.Duration(rng.Intn(12*60)) * time.Minute)
		bEnd := bStart.Add(time.Duration(1+rng.Intn(4*60)) * time.Minute)

		s := sched(t, "09:00", "10:00")
		s.StartTime, s.EndTime = aStart, aEnd

		// Reference: [aStart, aEnd) and [bStart, bEnd) intersect iff each
		// starts before the other ends.
		want := aStart.Before(bEnd) && bStart.Before(aEnd)
		if got := s.Overlaps(bStart, bEnd); got != want {
			t.Fatalf("iteration %d: Overlaps([%v,%v), [%v,%v)) = %v, want %v",
				i, aStart, aEnd, bStart, bEnd, got, want)
		}
	}
}

// TestSchedule_Cancel tests lifecycle guards on cancellation.
func TestSchedule_Cancel(t *testing.T) {
	s := sched(t, "09:00", "10:00")
	if err := s.Cancel(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Status != schedule.StatusCancelled {
		t.Errorf("expected cancelled status, got %s", s.Status)
	}
	if err := s.Cancel(); err != schedule.ErrAlreadyCancelled {
		t.Errorf("expected ErrAlreadyCancelled, got %v", err)
	}

	done := sched(t, "09:00", "10:00")
	done.Status = schedule.StatusCompleted
	if err := done.Cancel(); err != schedule.ErrCompleted {
		t.Errorf("expected ErrCompleted, got %v", err)
	}
}

// TestSchedule_InWindow tests the check-in admission window edges.
func TestSchedule_InWindow(t *testing.T) {
	s := sched(t, "09:00", "10:00")

	tests := []struct {
		name   string
		now    string
		window schedule.CheckInWindow
		want   bool
	}{
		{name: "standard at start", now: "09:00", window: schedule.WindowStandard, want: true},
		{name: "standard 15 before", now: "08:45", window: schedule.WindowStandard, want: true},
		{name: "standard 15 after", now: "09:15", window: schedule.WindowStandard, want: true},
		{name: "standard 20 before", now: "08:40", window: schedule.WindowStandard, want: false},
		{name: "standard 16 after", now: "09:16", window: schedule.WindowStandard, want: false},
		{name: "quick 30 after", now: "09:30", window: schedule.WindowQuick, want: true},
		{name: "quick 31 after", now: "09:31", window: schedule.WindowQuick, want: false},
		{name: "quick 20 before", now: "08:40", window: schedule.WindowQuick, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := mustCombine(t, "2024-01-10", tt.now)
			if got := s.InWindow(now, tt.window); got != tt.want {
				t.Errorf("InWindow(%s) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}
