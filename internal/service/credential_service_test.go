package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/evaluia/examcore-backend/internal/model"
	"github.com/evaluia/examcore-backend/internal/store"
)

type fakeCredentialStore struct {
	creds map[uuid.UUID]*model.ExamCredential
}

func newFakeCredentialStore() *fakeCredentialStore {
	return &fakeCredentialStore{creds: make(map[uuid.UUID]*model.ExamCredential)}
}

func (f *fakeCredentialStore) Create(_ context.Context, c *model.ExamCredential) error {
	cp := *c
	f.creds[c.ID] = &cp
	return nil
}

func (f *fakeCredentialStore) GetByUsername(_ context.Context, username string) (*model.ExamCredential, error) {
	for _, c := range f.creds {
		if c.Username == username {
			cp := *c
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeCredentialStore) MarkUsed(_ context.Context, id uuid.UUID, usedAt time.Time) error {
	c, ok := f.creds[id]
	if !ok {
		return store.ErrNotFound
	}
	c.UsedAt = &usedAt
	return nil
}

type credentialFixture struct {
	creds    *fakeCredentialStore
	profiles *fakeProfileStore
	exams    *fakeExamStore
	tests    *fakeTestStore
	svc      *CredentialService
}

func newCredentialFixture() *credentialFixture {
	f := &credentialFixture{
		creds:    newFakeCredentialStore(),
		profiles: newFakeProfileStore(),
		exams:    newFakeExamStore(),
		tests:    newFakeTestStore(),
	}
	f.svc = NewCredentialService(f.creds, f.profiles, f.exams, f.tests, nil, bcrypt.MinCost, zerolog.Nop())
	return f
}

func (f *credentialFixture) addExam() *model.Exam {
	e := &model.Exam{ID: uuid.New(), Title: "Reliability Screening", Kind: model.KindReliability, Company: "acme", Active: true}
	f.exams.exams[e.ID] = e
	return e
}

func TestIssueRequiresExactlyOneSubject(t *testing.T) {
	f := newCredentialFixture()

	_, _, err := f.svc.Issue(context.Background(), "acme", model.IssueCredentialRequest{})
	if !store.IsValidation(err) {
		t.Fatalf("Issue() = %v, want ValidationError", err)
	}
}

func TestIssueCreatesWalkUpProfile(t *testing.T) {
	f := newCredentialFixture()
	exam := f.addExam()

	cred, password, err := f.svc.Issue(context.Background(), "acme", model.IssueCredentialRequest{
		ExamID:    &exam.ID,
		SingleUse: true,
	})
	if err != nil {
		t.Fatalf("Issue() = %v", err)
	}
	if password == "" {
		t.Fatal("no plaintext password returned")
	}
	if cred.Username == "" {
		t.Fatal("no username generated")
	}
	if cred.Company != "acme" {
		t.Errorf("Company = %q, want acme", cred.Company)
	}

	profile, err := f.profiles.GetByID(context.Background(), cred.UserID)
	if err != nil {
		t.Fatalf("placeholder profile not created: %v", err)
	}
	if profile.Role != model.RoleParticipant {
		t.Errorf("Role = %q, want participant", profile.Role)
	}
	if !profile.CanLogin {
		t.Error("placeholder must be allowed to log in")
	}
}

func TestValidateGate(t *testing.T) {
	f := newCredentialFixture()
	exam := f.addExam()
	now := time.Now()

	cred, password, err := f.svc.Issue(context.Background(), "acme", model.IssueCredentialRequest{
		ExamID:         &exam.ID,
		SingleUse:      true,
		ExpiresInHours: 1,
	})
	if err != nil {
		t.Fatalf("Issue() = %v", err)
	}

	got, err := f.svc.Validate(context.Background(), cred.Username, password, now)
	if err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if got.ID != cred.ID {
		t.Errorf("ID = %s, want %s", got.ID, cred.ID)
	}

	if _, err := f.svc.Validate(context.Background(), cred.Username, "wrong", now); !errors.Is(err, ErrCredentialInvalid) {
		t.Errorf("wrong password = %v, want ErrCredentialInvalid", err)
	}
	if _, err := f.svc.Validate(context.Background(), "no-such-user", password, now); !errors.Is(err, ErrCredentialInvalid) {
		t.Errorf("unknown username = %v, want ErrCredentialInvalid", err)
	}
	if _, err := f.svc.Validate(context.Background(), cred.Username, password, now.Add(2*time.Hour)); !errors.Is(err, ErrCredentialExpired) {
		t.Errorf("past expiry = %v, want ErrCredentialExpired", err)
	}
}

func TestConsumeSingleUse(t *testing.T) {
	f := newCredentialFixture()
	exam := f.addExam()
	now := time.Now()

	cred, password, err := f.svc.Issue(context.Background(), "acme", model.IssueCredentialRequest{
		ExamID:    &exam.ID,
		SingleUse: true,
	})
	if err != nil {
		t.Fatalf("Issue() = %v", err)
	}

	if err := f.svc.Consume(context.Background(), cred, now); err != nil {
		t.Fatalf("Consume() = %v", err)
	}

	if _, err := f.svc.Validate(context.Background(), cred.Username, password, now); !errors.Is(err, ErrCredentialUsed) {
		t.Errorf("Validate() after consume = %v, want ErrCredentialUsed", err)
	}
}

func TestConsumeReusableIsNoop(t *testing.T) {
	f := newCredentialFixture()
	exam := f.addExam()
	now := time.Now()

	cred, password, err := f.svc.Issue(context.Background(), "acme", model.IssueCredentialRequest{ExamID: &exam.ID})
	if err != nil {
		t.Fatalf("Issue() = %v", err)
	}

	if err := f.svc.Consume(context.Background(), cred, now); err != nil {
		t.Fatalf("Consume() = %v", err)
	}
	if _, err := f.svc.Validate(context.Background(), cred.Username, password, now); err != nil {
		t.Errorf("reusable credential rejected after consume: %v", err)
	}
}
