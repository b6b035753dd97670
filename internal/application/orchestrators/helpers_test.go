package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"time"

	storeSchedule "gymdesk/internal/adapters/storage/schedule"
	"gymdesk/internal/domain/account"
	"gymdesk/internal/domain/class"
	"gymdesk/internal/domain/classtype"
	"gymdesk/internal/domain/enrollment"
	"gymdesk/internal/domain/member"
	"gymdesk/internal/domain/outbox"
	"gymdesk/internal/domain/schedule"
)

func fixedID() string {
	return "test-id-001"
}

func fixedNow() time.Time {
	return time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
}

// nowAt returns a Now func pinned to a YYYY-MM-DD HH:MM timestamp.
func nowAt(s string) func() time.Time {
	ts, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return ts }
}

// sequenceID returns a GenerateID func yielding id-1, id-2, ...
func sequenceID() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// mustSchedule builds a scheduled session for tests.
func mustSchedule(id, trainerID, date, startClock, endClock string, maxParticipants int) schedule.Schedule {
	start, err := schedule.CombineDateTime(date, startClock)
	if err != nil {
		panic(err)
	}
	end, err := schedule.CombineDateTime(date, endClock)
	if err != nil {
		panic(err)
	}
	return schedule.Schedule{
		ID:              id,
		Code:            "CODE-" + id,
		ClassID:         "cls-1",
		TrainerID:       trainerID,
		Date:            date,
		StartTime:       start,
		EndTime:         end,
		MaxParticipants: maxParticipants,
		Status:          schedule.StatusScheduled,
	}
}

// --- account store mock ---

type mockAccountStore struct {
	accounts map[string]account.Account
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{accounts: make(map[string]account.Account)}
}

func (m *mockAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return account.Account{}, errors.New("not found")
	}
	return a, nil
}

func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return account.Account{}, errors.New("not found")
}

func (m *mockAccountStore) Save(_ context.Context, a account.Account) error {
	m.accounts[a.ID] = a
	return nil
}

func (m *mockAccountStore) Count(_ context.Context) (int, error) {
	return len(m.accounts), nil
}

// --- member store mock ---

type mockMemberStore struct {
	members map[string]member.Member
}

func newMockMemberStore() *mockMemberStore {
	return &mockMemberStore{members: make(map[string]member.Member)}
}

func (m *mockMemberStore) GetByID(_ context.Context, id string) (member.Member, error) {
	mm, ok := m.members[id]
	if !ok {
		return member.Member{}, member.ErrNotFound
	}
	return mm, nil
}

func (m *mockMemberStore) GetByAccountID(_ context.Context, accountID string) (member.Member, error) {
	for _, mm := range m.members {
		if mm.AccountID == accountID {
			return mm, nil
		}
	}
	return member.Member{}, member.ErrNotFound
}

func (m *mockMemberStore) GetByCode(_ context.Context, code string) (member.Member, error) {
	for _, mm := range m.members {
		if mm.Code == code {
			return mm, nil
		}
	}
	return member.Member{}, member.ErrNotFound
}

func (m *mockMemberStore) Save(_ context.Context, mm member.Member) error {
	m.members[mm.ID] = mm
	return nil
}

// --- schedule store mock ---

type mockScheduleStore struct {
	schedules map[string]schedule.Schedule
	getErrs   map[string]error // per-id GetByID failures
}

func newMockScheduleStore() *mockScheduleStore {
	return &mockScheduleStore{schedules: make(map[string]schedule.Schedule)}
}

func (m *mockScheduleStore) GetByID(_ context.Context, id string) (schedule.Schedule, error) {
	if err, ok := m.getErrs[id]; ok {
		return schedule.Schedule{}, err
	}
	s, ok := m.schedules[id]
	if !ok {
		return schedule.Schedule{}, schedule.ErrNotFound
	}
	return s, nil
}

func (m *mockScheduleStore) GetByCode(_ context.Context, code string) (schedule.Schedule, error) {
	for _, s := range m.schedules {
		if s.Code == code {
			return s, nil
		}
	}
	return schedule.Schedule{}, schedule.ErrNotFound
}

func (m *mockScheduleStore) Save(_ context.Context, s schedule.Schedule) error {
	m.schedules[s.ID] = s
	return nil
}

func (m *mockScheduleStore) SaveIfTrainerFree(_ context.Context, s schedule.Schedule) error {
	for _, other := range m.schedules {
		if other.ID == s.ID || other.TrainerID != s.TrainerID || other.Date != s.Date {
			continue
		}
		if other.Status == schedule.StatusCancelled {
			continue
		}
		if other.Overlaps(s.StartTime, s.EndTime) {
			return schedule.ErrTrainerBusy
		}
	}
	m.schedules[s.ID] = s
	return nil
}

func (m *mockScheduleStore) ListByTrainerAndDate(_ context.Context, trainerID, date string) ([]schedule.Schedule, error) {
	var out []schedule.Schedule
	for _, s := range m.schedules {
		if s.TrainerID == trainerID && s.Date == date {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockScheduleStore) ListByClassID(_ context.Context, classID string) ([]schedule.Schedule, error) {
	var out []schedule.Schedule
	for _, s := range m.schedules {
		if s.ClassID == classID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockScheduleStore) ReserveSlot(_ context.Context, id string) error {
	s, ok := m.schedules[id]
	if !ok {
		return errors.New("not found")
	}
	if s.Status != schedule.StatusScheduled || s.CurrentParticipants >= s.MaxParticipants {
		return storeSchedule.ErrNoSlot
	}
	s.CurrentParticipants++
	m.schedules[id] = s
	return nil
}

func (m *mockScheduleStore) ReleaseSlot(_ context.Context, id string) error {
	s, ok := m.schedules[id]
	if !ok {
		return errors.New("not found")
	}
	if s.CurrentParticipants <= 0 {
		return storeSchedule.ErrNothingToFree
	}
	s.CurrentParticipants--
	m.schedules[id] = s
	return nil
}

// --- enrollment store mock ---

type mockEnrollmentStore struct {
	enrollments   map[string]enrollment.Enrollment
	scheduleDates map[string]string // schedule id -> date, for the same-day filter
	saveErr       error
	lookupErr     error // injected GetByScheduleAndMember failure
}

func newMockEnrollmentStore() *mockEnrollmentStore {
	return &mockEnrollmentStore{enrollments: make(map[string]enrollment.Enrollment)}
}

func (m *mockEnrollmentStore) GetByID(_ context.Context, id string) (enrollment.Enrollment, error) {
	e, ok := m.enrollments[id]
	if !ok {
		return enrollment.Enrollment{}, enrollment.ErrNotFound
	}
	return e, nil
}

func (m *mockEnrollmentStore) GetByScheduleAndMember(_ context.Context, scheduleID, memberID string) (enrollment.Enrollment, error) {
	if m.lookupErr != nil {
		return enrollment.Enrollment{}, m.lookupErr
	}
	for _, e := range m.enrollments {
		if e.ScheduleID == scheduleID && e.MemberID == memberID {
			return e, nil
		}
	}
	return enrollment.Enrollment{}, enrollment.ErrNotFound
}

func (m *mockEnrollmentStore) Save(_ context.Context, e enrollment.Enrollment) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.enrollments[e.ID] = e
	return nil
}

func (m *mockEnrollmentStore) ListBySchedule(_ context.Context, scheduleID string) ([]enrollment.Enrollment, error) {
	var out []enrollment.Enrollment
	for _, e := range m.enrollments {
		if e.ScheduleID == scheduleID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEnrollmentStore) ListActiveByMemberOnDate(ctx context.Context, memberID, date string) ([]enrollment.Enrollment, error) {
	var out []enrollment.Enrollment
	for _, e := range m.enrollments {
		if e.MemberID != memberID || !e.IsActive() {
			continue
		}
		if m.scheduleDates == nil {
			out = append(out, e)
			continue
		}
		if m.scheduleDates[e.ScheduleID] == date {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEnrollmentStore) SetInvoiceRef(_ context.Context, id, invoiceRef string) error {
	e, ok := m.enrollments[id]
	if !ok {
		return errors.New("not found")
	}
	e.InvoiceRef = invoiceRef
	m.enrollments[id] = e
	return nil
}

// --- class / class type store mocks ---

type mockClassStore struct {
	classes map[string]class.Class
}

func newMockClassStore() *mockClassStore {
	return &mockClassStore{classes: make(map[string]class.Class)}
}

func (m *mockClassStore) GetByID(_ context.Context, id string) (class.Class, error) {
	c, ok := m.classes[id]
	if !ok {
		return class.Class{}, errors.New("not found")
	}
	return c, nil
}

func (m *mockClassStore) Save(_ context.Context, c class.Class) error {
	m.classes[c.ID] = c
	return nil
}

func (m *mockClassStore) Delete(_ context.Context, id string) error {
	delete(m.classes, id)
	return nil
}

func (m *mockClassStore) ListByClassTypeID(_ context.Context, classTypeID string) ([]class.Class, error) {
	var out []class.Class
	for _, c := range m.classes {
		if c.ClassTypeID == classTypeID {
			out = append(out, c)
		}
	}
	return out, nil
}

type mockClassTypeStore struct {
	classTypes map[string]classtype.ClassType
}

func newMockClassTypeStore() *mockClassTypeStore {
	return &mockClassTypeStore{classTypes: make(map[string]classtype.ClassType)}
}

func (m *mockClassTypeStore) GetByID(_ context.Context, id string) (classtype.ClassType, error) {
	ct, ok := m.classTypes[id]
	if !ok {
		return classtype.ClassType{}, errors.New("not found")
	}
	return ct, nil
}

func (m *mockClassTypeStore) Save(_ context.Context, ct classtype.ClassType) error {
	m.classTypes[ct.ID] = ct
	return nil
}

func (m *mockClassTypeStore) Delete(_ context.Context, id string) error {
	delete(m.classTypes, id)
	return nil
}

func (m *mockClassTypeStore) List(_ context.Context) ([]classtype.ClassType, error) {
	var out []classtype.ClassType
	for _, ct := range m.classTypes {
		out = append(out, ct)
	}
	return out, nil
}

// --- outbox store mock ---

type mockOutboxStore struct {
	entries map[string]outbox.Entry
	saveErr error
}

func newMockOutboxStore() *mockOutboxStore {
	return &mockOutboxStore{entries: make(map[string]outbox.Entry)}
}

func (m *mockOutboxStore) GetByID(_ context.Context, id string) (outbox.Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return outbox.Entry{}, errors.New("not found")
	}
	return e, nil
}

func (m *mockOutboxStore) Save(_ context.Context, e outbox.Entry) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.entries[e.ID] = e
	return nil
}

func (m *mockOutboxStore) Delete(_ context.Context, id string) error {
	delete(m.entries, id)
	return nil
}

func (m *mockOutboxStore) ListPending(_ context.Context, limit int) ([]outbox.Entry, error) {
	var out []outbox.Entry
	for _, e := range m.entries {
		if e.Status == outbox.StatusPending || e.Status == outbox.StatusRetrying {
			out = append(out, e)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *mockOutboxStore) ListFailed(_ context.Context, limit int) ([]outbox.Entry, error) {
	var out []outbox.Entry
	for _, e := range m.entries {
		if e.Status == outbox.StatusFailed && e.Attempts >= e.MaxAttempts {
			out = append(out, e)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *mockOutboxStore) CountByStatus(_ context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, e := range m.entries {
		counts[e.Status]++
	}
	return counts, nil
}
