package projections

import (
	"context"
	"sort"
	"time"

	"gymdesk/internal/domain/schedule"
)

// TrainerScheduleStore defines the schedule store interface for this projection.
type TrainerScheduleStore interface {
	ListByTrainerAndDate(ctx context.Context, trainerID, date string) ([]schedule.Schedule, error)
}

// GetTrainerScheduleQuery carries query parameters. Date defaults to today.
type GetTrainerScheduleQuery struct {
	TrainerID string
	Date      string // YYYY-MM-DD
}

// TrainerScheduleEntry is one session on a trainer's day sheet.
type TrainerScheduleEntry struct {
	ScheduleID          string
	Code                string
	ClassName           string
	Room                string
	StartTime           time.Time
	EndTime             time.Time
	MaxParticipants     int
	CurrentParticipants int
	Status              string
	Notes               string
}

// GetTrainerScheduleDeps holds dependencies for GetTrainerSchedule.
type GetTrainerScheduleDeps struct {
	ScheduleStore TrainerScheduleStore
	ClassStore    ClassStore
}

// QueryGetTrainerSchedule lists a trainer's sessions for one day with current
// headcounts, ordered by start time. Cancelled sessions stay visible so the
// trainer sees freed slots.
// PRE: TrainerID is non-empty; Date is YYYY-MM-DD or empty for today
// POST: Returns sessions sorted by start time
func QueryGetTrainerSchedule(ctx context.Context, query GetTrainerScheduleQuery, deps GetTrainerScheduleDeps) ([]TrainerScheduleEntry, error) {
	date := query.Date
	if date == "" {
		date = time.Now().Format(schedule.DateFormat)
	}

	schedules, err := deps.ScheduleStore.ListByTrainerAndDate(ctx, query.TrainerID, date)
	if err != nil {
		return nil, err
	}

	var entries []TrainerScheduleEntry
	for _, s := range schedules {
		entry := TrainerScheduleEntry{
			ScheduleID:          s.ID,
			Code:                s.Code,
			Room:                s.Room,
			StartTime:           s.StartTime,
			EndTime:             s.EndTime,
			MaxParticipants:     s.MaxParticipants,
			CurrentParticipants: s.CurrentParticipants,
			Status:              s.Status,
			Notes:               s.Notes,
		}
		if cls, err := deps.ClassStore.GetByID(ctx, s.ClassID); err == nil {
			entry.ClassName = cls.Name
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].StartTime.Before(entries[j].StartTime)
	})

	return entries, nil
}
