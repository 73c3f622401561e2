package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/evaluia/examcore-backend/internal/model"
	"github.com/evaluia/examcore-backend/internal/store"
)

// In-memory store fakes. Each method can be forced to fail by setting the
// corresponding err field; calls are counted so tests can assert on ordering
// and retry behavior.

type fakeSessionStore struct {
	sessions map[uuid.UUID]*model.ExamSession

	createErr    error
	getErr       error
	updateErr    error
	setStatusErr error

	createCalls    int
	updateCalls    int
	setStatusCalls int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[uuid.UUID]*model.ExamSession)}
}

func (f *fakeSessionStore) Create(_ context.Context, s *model.ExamSession) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	cp := *s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeSessionStore) GetByID(_ context.Context, id uuid.UUID) (*model.ExamSession, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	s, ok := f.sessions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionStore) Update(_ context.Context, s *model.ExamSession) error {
	f.updateCalls++
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.sessions[s.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeSessionStore) IncrementAttempts(_ context.Context, id uuid.UUID) error {
	s, ok := f.sessions[id]
	if !ok {
		return store.ErrNotFound
	}
	s.AttemptsTaken++
	return nil
}

func (f *fakeSessionStore) SetStatus(_ context.Context, id uuid.UUID, status model.SessionStatus) error {
	f.setStatusCalls++
	if f.setStatusErr != nil {
		return f.setStatusErr
	}
	s, ok := f.sessions[id]
	if !ok {
		return store.ErrNotFound
	}
	s.Status = status
	return nil
}

func (f *fakeSessionStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.sessions[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessionStore) ListByUser(_ context.Context, userID uuid.UUID) ([]model.ExamSession, error) {
	var out []model.ExamSession
	for _, s := range f.sessions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

type fakeExamStore struct {
	exams map[uuid.UUID]*model.Exam
}

func newFakeExamStore() *fakeExamStore {
	return &fakeExamStore{exams: make(map[uuid.UUID]*model.Exam)}
}

func (f *fakeExamStore) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	e, ok := f.exams[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return e, nil
}

type fakeTestStore struct {
	tests map[uuid.UUID]*model.PsychometricTest
}

func newFakeTestStore() *fakeTestStore {
	return &fakeTestStore{tests: make(map[uuid.UUID]*model.PsychometricTest)}
}

func (f *fakeTestStore) GetByID(_ context.Context, id uuid.UUID) (*model.PsychometricTest, error) {
	t, ok := f.tests[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return t, nil
}

type fakeProfileStore struct {
	profiles map[uuid.UUID]*model.Profile

	setCanLoginErr   error
	setCanLoginCalls int
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{profiles: make(map[uuid.UUID]*model.Profile)}
}

func (f *fakeProfileStore) Create(_ context.Context, p *model.Profile) error {
	cp := *p
	f.profiles[p.ID] = &cp
	return nil
}

func (f *fakeProfileStore) GetByID(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfileStore) GetByEmail(_ context.Context, email string) (*model.Profile, error) {
	for _, p := range f.profiles {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeProfileStore) SetCanLogin(_ context.Context, id uuid.UUID, canLogin bool) error {
	f.setCanLoginCalls++
	if f.setCanLoginErr != nil {
		return f.setCanLoginErr
	}
	p, ok := f.profiles[id]
	if !ok {
		return store.ErrNotFound
	}
	p.CanLogin = canLogin
	return nil
}

type fakeAttemptStore struct {
	attempts map[uuid.UUID]*model.ExamAttempt

	createErr        error
	updateAnswersErr error
	markCompletedErr error

	createCalls int
}

func newFakeAttemptStore() *fakeAttemptStore {
	return &fakeAttemptStore{attempts: make(map[uuid.UUID]*model.ExamAttempt)}
}

func (f *fakeAttemptStore) Create(_ context.Context, a *model.ExamAttempt) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	cp := *a
	f.attempts[a.ID] = &cp
	return nil
}

func (f *fakeAttemptStore) UpdateAnswers(_ context.Context, id uuid.UUID, questions, answers json.RawMessage) error {
	if f.updateAnswersErr != nil {
		return f.updateAnswersErr
	}
	a, ok := f.attempts[id]
	if !ok {
		return store.ErrNotFound
	}
	a.Questions = questions
	a.Answers = answers
	return nil
}

func (f *fakeAttemptStore) MarkCompleted(_ context.Context, id uuid.UUID) error {
	if f.markCompletedErr != nil {
		return f.markCompletedErr
	}
	a, ok := f.attempts[id]
	if !ok {
		return store.ErrNotFound
	}
	now := time.Now()
	a.Completed = true
	a.CompletedAt = &now
	return nil
}

func (f *fakeAttemptStore) ListBySession(_ context.Context, sessionID uuid.UUID) ([]model.ExamAttempt, error) {
	var out []model.ExamAttempt
	for _, a := range f.attempts {
		if a.SessionID == sessionID {
			out = append(out, *a)
		}
	}
	return out, nil
}

type fakeAssignmentStore struct {
	assignments map[uuid.UUID]*model.ExamAssignment

	setStatusErr   error
	setStatusCalls int
}

func newFakeAssignmentStore() *fakeAssignmentStore {
	return &fakeAssignmentStore{assignments: make(map[uuid.UUID]*model.ExamAssignment)}
}

func (f *fakeAssignmentStore) Create(_ context.Context, a *model.ExamAssignment) error {
	cp := *a
	f.assignments[a.ID] = &cp
	return nil
}

func (f *fakeAssignmentStore) GetByUserAndExam(_ context.Context, userID, examID uuid.UUID) (*model.ExamAssignment, error) {
	for _, a := range f.assignments {
		if a.UserID == userID && a.ExamID == examID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeAssignmentStore) SetStatus(_ context.Context, id uuid.UUID, status model.AssignmentStatus) error {
	f.setStatusCalls++
	if f.setStatusErr != nil {
		return f.setStatusErr
	}
	a, ok := f.assignments[id]
	if !ok {
		return store.ErrNotFound
	}
	a.Status = status
	return nil
}

// netErr builds a classified network failure like the store adapter would.
func netErr(op string) error {
	return &store.NetworkError{Op: op, Err: context.DeadlineExceeded}
}

// rejectionErr builds a classified remote rejection.
func rejectionErr(op string) error {
	return &store.RemoteRejection{Op: op, Err: context.Canceled}
}

// immediateRetry is a retry policy that never sleeps, for fast tests.
func immediateRetry() RetryPolicy {
	p := DefaultRetryPolicy()
	p.BaseDelay = 0
	p.sleep = func(context.Context, time.Duration) {}
	return p
}
