package projections

import (
	"context"
	"errors"
	"time"

	"gymdesk/internal/domain/account"
	"gymdesk/internal/domain/class"
	"gymdesk/internal/domain/classtype"
	"gymdesk/internal/domain/enrollment"
	"gymdesk/internal/domain/member"
	"gymdesk/internal/domain/outbox"
	"gymdesk/internal/domain/schedule"
)

func ts(s string) time.Time {
	v, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return v
}

type fakeStores struct {
	schedules   map[string]schedule.Schedule
	classes     map[string]class.Class
	classTypes  map[string]classtype.ClassType
	accounts    map[string]account.Account
	members     map[string]member.Member
	enrollments map[string]enrollment.Enrollment
	outbox      map[string]outbox.Entry
}

func newFakeStores() *fakeStores {
	return &fakeStores{
		schedules:   make(map[string]schedule.Schedule),
		classes:     make(map[string]class.Class),
		classTypes:  make(map[string]classtype.ClassType),
		accounts:    make(map[string]account.Account),
		members:     make(map[string]member.Member),
		enrollments: make(map[string]enrollment.Enrollment),
		outbox:      make(map[string]outbox.Entry),
	}
}

func (f *fakeStores) GetByID(_ context.Context, id string) (schedule.Schedule, error) {
	s, ok := f.schedules[id]
	if !ok {
		return schedule.Schedule{}, errors.New("not found")
	}
	return s, nil
}

func (f *fakeStores) List(_ context.Context) ([]schedule.Schedule, error) {
	var out []schedule.Schedule
	for _, s := range f.schedules {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeStores) ListByDate(_ context.Context, date string) ([]schedule.Schedule, error) {
	var out []schedule.Schedule
	for _, s := range f.schedules {
		if s.Date == date {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStores) ListByTrainerAndDate(_ context.Context, trainerID, date string) ([]schedule.Schedule, error) {
	var out []schedule.Schedule
	for _, s := range f.schedules {
		if s.TrainerID == trainerID && s.Date == date {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStores) ListBySchedule(_ context.Context, scheduleID string) ([]enrollment.Enrollment, error) {
	var out []enrollment.Enrollment
	for _, e := range f.enrollments {
		if e.ScheduleID == scheduleID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStores) ListByMember(_ context.Context, memberID string) ([]enrollment.Enrollment, error) {
	var out []enrollment.Enrollment
	for _, e := range f.enrollments {
		if e.MemberID == memberID {
			out = append(out, e)
		}
	}
	return out, nil
}

// Separate receivers for the lookup stores so one fakeStores value can serve
// every projection interface.

type fakeClassStore struct{ f *fakeStores }

func (s fakeClassStore) GetByID(_ context.Context, id string) (class.Class, error) {
	c, ok := s.f.classes[id]
	if !ok {
		return class.Class{}, errors.New("not found")
	}
	return c, nil
}

type fakeClassTypeStore struct{ f *fakeStores }

func (s fakeClassTypeStore) GetByID(_ context.Context, id string) (classtype.ClassType, error) {
	ct, ok := s.f.classTypes[id]
	if !ok {
		return classtype.ClassType{}, errors.New("not found")
	}
	return ct, nil
}

type fakeAccountStore struct{ f *fakeStores }

func (s fakeAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	a, ok := s.f.accounts[id]
	if !ok {
		return account.Account{}, errors.New("not found")
	}
	return a, nil
}

type fakeMemberStore struct{ f *fakeStores }

func (s fakeMemberStore) GetByID(_ context.Context, id string) (member.Member, error) {
	m, ok := s.f.members[id]
	if !ok {
		return member.Member{}, errors.New("not found")
	}
	return m, nil
}

type fakeOutboxStore struct{ f *fakeStores }

func (s fakeOutboxStore) CountByStatus(_ context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, e := range s.f.outbox {
		counts[e.Status]++
	}
	return counts, nil
}

func (s fakeOutboxStore) ListFailed(_ context.Context, limit int) ([]outbox.Entry, error) {
	var out []outbox.Entry
	for _, e := range s.f.outbox {
		if e.Status == outbox.StatusFailed {
			out = append(out, e)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// seedSession adds a schedule with its class and class type.
func (f *fakeStores) seedSession(id, classID, trainerID, date, start, end string, maxP, current int) {
	if _, ok := f.classes[classID]; !ok {
		f.classTypes["ct-"+classID] = classtype.ClassType{
			ID: "ct-" + classID, Name: "Type " + classID, DurationMin: 60,
			DefaultCapacity: maxP, Difficulty: classtype.DifficultyBeginner,
			Color: "#e74c3c", Description: "A **great** class.",
		}
		f.classes[classID] = class.Class{
			ID: classID, ClassTypeID: "ct-" + classID, Name: "Class " + classID,
			PriceCents: 1500, DurationMin: 60, Capacity: maxP, Room: "Studio A",
		}
	}
	f.schedules[id] = schedule.Schedule{
		ID: id, Code: "CODE-" + id, ClassID: classID, TrainerID: trainerID,
		Date: date, StartTime: ts(date + " " + start), EndTime: ts(date + " " + end),
		Room: "Studio A", MaxParticipants: maxP, CurrentParticipants: current,
		Status: schedule.StatusScheduled,
	}
}
