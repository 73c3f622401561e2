package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/evaluia/examcore-backend/internal/model"
	"github.com/evaluia/examcore-backend/internal/store"
)

type sessionFixture struct {
	sessions *fakeSessionStore
	exams    *fakeExamStore
	tests    *fakeTestStore
	profiles *fakeProfileStore
	svc      *SessionService
}

func newSessionFixture() *sessionFixture {
	f := &sessionFixture{
		sessions: newFakeSessionStore(),
		exams:    newFakeExamStore(),
		tests:    newFakeTestStore(),
		profiles: newFakeProfileStore(),
	}
	f.svc = NewSessionService(f.sessions, f.exams, f.tests, f.profiles, immediateRetry(), zerolog.Nop())
	return f
}

func (f *sessionFixture) addProfile() *model.Profile {
	p := &model.Profile{ID: uuid.New(), Name: "Dewi", Company: "acme", Role: model.RoleParticipant, CanLogin: true}
	f.profiles.profiles[p.ID] = p
	return p
}

func (f *sessionFixture) addExam(durationMinutes int) *model.Exam {
	e := &model.Exam{ID: uuid.New(), Title: "Reliability Screening", Kind: model.KindReliability, Company: "acme", DurationMinutes: durationMinutes, Active: true}
	f.exams.exams[e.ID] = e
	return e
}

func (f *sessionFixture) addTest(durationMinutes int) *model.PsychometricTest {
	p := &model.PsychometricTest{ID: uuid.New(), Title: "OCEAN", Variant: model.VariantOcean, Company: "acme", DurationMinutes: durationMinutes, Active: true}
	f.tests.tests[p.ID] = p
	return p
}

func TestCreateSessionRequiresExactlyOneSubject(t *testing.T) {
	f := newSessionFixture()
	user := f.addProfile()
	exam := f.addExam(60)
	test := f.addTest(0)

	var verr *store.ValidationError

	_, err := f.svc.Create(context.Background(), user.ID, model.CreateSessionRequest{})
	if !errors.As(err, &verr) {
		t.Fatalf("Create with no subject = %v, want ValidationError", err)
	}

	_, err = f.svc.Create(context.Background(), user.ID, model.CreateSessionRequest{ExamID: &exam.ID, TestID: &test.ID})
	if !errors.As(err, &verr) {
		t.Fatalf("Create with both subjects = %v, want ValidationError", err)
	}
	if f.sessions.createCalls != 0 {
		t.Errorf("createCalls = %d, want 0", f.sessions.createCalls)
	}
}

func TestCreateSessionBindsKindAndTenant(t *testing.T) {
	f := newSessionFixture()
	user := f.addProfile()
	exam := f.addExam(60)

	s, err := f.svc.Create(context.Background(), user.ID, model.CreateSessionRequest{ExamID: &exam.ID})
	if err != nil {
		t.Fatalf("Create() = %v", err)
	}
	if s.Kind != model.KindReliability {
		t.Errorf("Kind = %q, want %q", s.Kind, model.KindReliability)
	}
	if s.Company != user.Company {
		t.Errorf("Company = %q, want %q", s.Company, user.Company)
	}
	if s.Status != model.SessionStatusPending {
		t.Errorf("Status = %q, want pending", s.Status)
	}
	if s.MaxAttempts != model.DefaultMaxAttempts {
		t.Errorf("MaxAttempts = %d, want %d", s.MaxAttempts, model.DefaultMaxAttempts)
	}
}

func TestCreatePsychometricSession(t *testing.T) {
	f := newSessionFixture()
	user := f.addProfile()
	test := f.addTest(0)

	s, err := f.svc.Create(context.Background(), user.ID, model.CreateSessionRequest{TestID: &test.ID})
	if err != nil {
		t.Fatalf("Create() = %v", err)
	}
	if s.Kind != model.KindPsychometric {
		t.Errorf("Kind = %q, want %q", s.Kind, model.KindPsychometric)
	}
}

func TestStartStampsFirstStart(t *testing.T) {
	f := newSessionFixture()
	user := f.addProfile()
	exam := f.addExam(45)

	created, err := f.svc.Create(context.Background(), user.ID, model.CreateSessionRequest{ExamID: &exam.ID})
	if err != nil {
		t.Fatalf("Create() = %v", err)
	}

	before := time.Now()
	started, err := f.svc.Start(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Start() = %v", err)
	}

	if started.StartedAt == nil {
		t.Fatal("StartedAt not stamped")
	}
	if started.Status != model.SessionStatusStarted {
		t.Errorf("Status = %q, want started", started.Status)
	}
	if started.AttemptsTaken != 1 {
		t.Errorf("AttemptsTaken = %d, want 1", started.AttemptsTaken)
	}
	if started.EndsAt == nil {
		t.Fatal("EndsAt not set")
	}
	window := started.EndsAt.Sub(before)
	if window < 44*time.Minute || window > 46*time.Minute {
		t.Errorf("exam window = %v, want ~45m", window)
	}
}

func TestStartAgainRefreshesWindowWithoutSecondAttempt(t *testing.T) {
	f := newSessionFixture()
	user := f.addProfile()
	exam := f.addExam(45)

	created, _ := f.svc.Create(context.Background(), user.ID, model.CreateSessionRequest{ExamID: &exam.ID})

	first, err := f.svc.Start(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("first Start() = %v", err)
	}

	second, err := f.svc.Start(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("second Start() = %v", err)
	}

	if second.AttemptsTaken != 1 {
		t.Errorf("AttemptsTaken = %d, want 1 (re-start must not double count)", second.AttemptsTaken)
	}
	if !second.StartedAt.Equal(*first.StartedAt) {
		t.Errorf("StartedAt changed on re-start: %v vs %v", second.StartedAt, first.StartedAt)
	}
	if second.EndsAt.Before(*first.EndsAt) {
		t.Errorf("EndsAt not refreshed: %v before %v", second.EndsAt, first.EndsAt)
	}
}

func TestStartPsychometricDefaultsWindowAndSkipsIncrement(t *testing.T) {
	f := newSessionFixture()
	user := f.addProfile()
	test := f.addTest(0)

	created, _ := f.svc.Create(context.Background(), user.ID, model.CreateSessionRequest{TestID: &test.ID})

	before := time.Now()
	started, err := f.svc.Start(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Start() = %v", err)
	}

	if started.AttemptsTaken != 0 {
		t.Errorf("AttemptsTaken = %d, want 0 for psychometric start", started.AttemptsTaken)
	}
	window := started.EndsAt.Sub(before)
	if window < model.DefaultPsychometricDuration-time.Minute || window > model.DefaultPsychometricDuration+time.Minute {
		t.Errorf("window = %v, want ~%v", window, model.DefaultPsychometricDuration)
	}
}

func TestStartRetriesPersistenceOnNetworkFailure(t *testing.T) {
	f := newSessionFixture()
	user := f.addProfile()
	exam := f.addExam(45)

	created, _ := f.svc.Create(context.Background(), user.ID, model.CreateSessionRequest{ExamID: &exam.ID})

	f.sessions.updateErr = netErr("session.update")
	_, err := f.svc.Start(context.Background(), created.ID)
	if err == nil {
		t.Fatal("expected error")
	}
	if !store.IsNetwork(err) {
		t.Errorf("error not classified as network: %v", err)
	}
	if f.sessions.updateCalls != 3 {
		t.Errorf("updateCalls = %d, want 3 (full retry budget)", f.sessions.updateCalls)
	}

	var opErr *OpError
	if !errors.As(err, &opErr) || opErr.Op != "start" {
		t.Errorf("error = %v, want OpError{Op: start}", err)
	}
}

func TestStartMissingSession(t *testing.T) {
	f := newSessionFixture()

	_, err := f.svc.Start(context.Background(), uuid.New())
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Start() = %v, want ErrNotFound", err)
	}
}
