package projections

import (
	"bytes"
	"context"
	"sort"
	"time"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"gymdesk/internal/domain/schedule"
)

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// TimetableScheduleStore defines the schedule store interface for this projection.
type TimetableScheduleStore interface {
	ListByDate(ctx context.Context, date string) ([]schedule.Schedule, error)
}

// GetTimetableQuery carries query parameters. Date defaults to today.
type GetTimetableQuery struct {
	Date             string // YYYY-MM-DD
	IncludeCancelled bool
}

// TimetableEntry is one session on the public timetable, enriched with class
// and trainer details.
type TimetableEntry struct {
	ScheduleID          string
	Code                string
	ClassID             string
	ClassName           string
	ClassTypeName       string
	Difficulty          string
	Color               string
	DescriptionHTML     string // rendered class type markdown
	TrainerID           string
	TrainerName         string
	Room                string
	StartTime           time.Time
	EndTime             time.Time
	PriceCents          int64
	MaxParticipants     int
	CurrentParticipants int
	SpotsLeft           int
	Status              string
}

// GetTimetableDeps holds dependencies for GetTimetable.
type GetTimetableDeps struct {
	ScheduleStore  TimetableScheduleStore
	ClassStore     ClassStore
	ClassTypeStore ClassTypeStore
	AccountStore   AccountStore // optional: nil skips trainer names
}

// QueryGetTimetable lists the sessions for one day ordered by start time,
// with class type metadata and remaining capacity for the booking page.
// PRE: Date is YYYY-MM-DD or empty for today
// POST: Returns entries sorted by start time; cancelled sessions filtered
// unless requested
func QueryGetTimetable(ctx context.Context, query GetTimetableQuery, deps GetTimetableDeps) ([]TimetableEntry, error) {
	date := query.Date
	if date == "" {
		date = time.Now().Format(schedule.DateFormat)
	}

	schedules, err := deps.ScheduleStore.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	var entries []TimetableEntry
	for _, s := range schedules {
		if s.Status == schedule.StatusCancelled && !query.IncludeCancelled {
			continue
		}

		cls, err := deps.ClassStore.GetByID(ctx, s.ClassID)
		if err != nil {
			continue // skip orphaned schedules
		}

		entry := TimetableEntry{
			ScheduleID:          s.ID,
			Code:                s.Code,
			ClassID:             cls.ID,
			ClassName:           cls.Name,
			TrainerID:           s.TrainerID,
			Room:                s.Room,
			StartTime:           s.StartTime,
			EndTime:             s.EndTime,
			PriceCents:          cls.PriceCents,
			MaxParticipants:     s.MaxParticipants,
			CurrentParticipants: s.CurrentParticipants,
			SpotsLeft:           s.MaxParticipants - s.CurrentParticipants,
			Status:              s.Status,
		}

		if ct, err := deps.ClassTypeStore.GetByID(ctx, cls.ClassTypeID); err == nil {
			entry.ClassTypeName = ct.Name
			entry.Difficulty = ct.Difficulty
			entry.Color = ct.Color
			entry.DescriptionHTML = renderMarkdown(ct.Description)
		}

		if deps.AccountStore != nil && s.TrainerID != "" {
			if trainer, err := deps.AccountStore.GetByID(ctx, s.TrainerID); err == nil {
				entry.TrainerName = trainer.Name
			}
		}

		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].StartTime.Equal(entries[j].StartTime) {
			return entries[i].ClassName < entries[j].ClassName
		}
		return entries[i].StartTime.Before(entries[j].StartTime)
	})

	return entries, nil
}

// renderMarkdown converts markdown to HTML, returning the empty string for
// empty input or render failures.
func renderMarkdown(md string) string {
	if md == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return ""
	}
	return buf.String()
}
