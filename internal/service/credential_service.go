package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/evaluia/examcore-backend/internal/credentials"
	"github.com/evaluia/examcore-backend/internal/model"
	"github.com/evaluia/examcore-backend/internal/store"
)

// Credential gate errors surfaced to the caller.
var (
	ErrCredentialInvalid = errors.New("invalid exam credential")
	ErrCredentialExpired = errors.New("exam credential has expired")
	ErrCredentialUsed    = errors.New("exam credential was already used")
)

// CredentialMailer is the slice of the mailer the credential service needs.
type CredentialMailer interface {
	SendCredentialEmail(ctx context.Context, toEmail, toName, username, password, subjectTitle string, expiresAt *time.Time) error
}

// CredentialService issues and validates exam credentials. The lifecycle
// treats an issued credential as an opaque gate: it must validate before a
// session may start, and single-use credentials are consumed on start.
type CredentialService struct {
	creds      CredentialStore
	profiles   ProfileStore
	exams      ExamStore
	tests      TestStore
	mailer     CredentialMailer // nil disables notification
	bcryptCost int
	log        zerolog.Logger
}

// NewCredentialService creates a CredentialService.
func NewCredentialService(
	creds CredentialStore,
	profiles ProfileStore,
	exams ExamStore,
	tests TestStore,
	mailer CredentialMailer,
	bcryptCost int,
	log zerolog.Logger,
) *CredentialService {
	return &CredentialService{
		creds:      creds,
		profiles:   profiles,
		exams:      exams,
		tests:      tests,
		mailer:     mailer,
		bcryptCost: bcryptCost,
		log:        log.With().Str("component", "credential_service").Logger(),
	}
}

// Issue generates a credential bound to exactly one exam or test. When the
// request names no user, a placeholder participant profile is created for
// anonymous walk-up use. Returns the credential and the plaintext password,
// which is never stored.
func (s *CredentialService) Issue(ctx context.Context, company string, req model.IssueCredentialRequest) (*model.ExamCredential, string, error) {
	if (req.ExamID == nil) == (req.TestID == nil) {
		return nil, "", &store.ValidationError{Reason: "exactly one of exam_id or test_id must be set"}
	}

	var subjectTitle string
	if req.ExamID != nil {
		exam, err := s.exams.GetByID(ctx, *req.ExamID)
		if err != nil {
			return nil, "", fmt.Errorf("resolve exam: %w", err)
		}
		subjectTitle = exam.Title
	} else {
		test, err := s.tests.GetByID(ctx, *req.TestID)
		if err != nil {
			return nil, "", fmt.Errorf("resolve test: %w", err)
		}
		subjectTitle = test.Title
	}

	userID, err := s.resolveUser(ctx, company, req.UserID)
	if err != nil {
		return nil, "", err
	}

	username, err := credentials.GenerateUsername()
	if err != nil {
		return nil, "", fmt.Errorf("generate username: %w", err)
	}
	password, err := credentials.GeneratePassword(8)
	if err != nil {
		return nil, "", fmt.Errorf("generate password: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	cred := &model.ExamCredential{
		ID:           uuid.New(),
		ExamID:       req.ExamID,
		TestID:       req.TestID,
		UserID:       userID,
		Username:     username,
		PasswordHash: string(hash),
		SingleUse:    req.SingleUse,
		Company:      company,
	}
	if req.ExpiresInHours > 0 {
		expires := time.Now().Add(time.Duration(req.ExpiresInHours) * time.Hour)
		cred.ExpiresAt = &expires
	}

	if err := s.creds.Create(ctx, cred); err != nil {
		return nil, "", fmt.Errorf("store credential: %w", err)
	}

	s.log.Info().
		Str("credential_id", cred.ID.String()).
		Str("username", username).
		Bool("single_use", cred.SingleUse).
		Msg("Credential issued")

	if req.NotifyEmail != "" && s.mailer != nil {
		name := req.NotifyName
		if name == "" {
			name = "there"
		}
		if err := s.mailer.SendCredentialEmail(ctx, req.NotifyEmail, name, username, password, subjectTitle, cred.ExpiresAt); err != nil {
			// Issuance stands even if the email fails; the admin still sees
			// the plaintext in the response.
			s.log.Error().Err(err).Str("to", req.NotifyEmail).Msg("Credential email failed")
		}
	}

	return cred, password, nil
}

// Validate checks a username/password pair against the gate rules: the
// credential must exist, match, be unexpired and (if single-use) unused.
func (s *CredentialService) Validate(ctx context.Context, username, password string, now time.Time) (*model.ExamCredential, error) {
	cred, err := s.creds.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCredentialInvalid
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return nil, ErrCredentialInvalid
	}
	if cred.ExpiresAt != nil && now.After(*cred.ExpiresAt) {
		return nil, ErrCredentialExpired
	}
	if cred.SingleUse && cred.UsedAt != nil {
		return nil, ErrCredentialUsed
	}

	return cred, nil
}

// Consume burns a single-use credential. No-op for reusable ones.
func (s *CredentialService) Consume(ctx context.Context, cred *model.ExamCredential, now time.Time) error {
	if !cred.SingleUse {
		return nil
	}
	if err := s.creds.MarkUsed(ctx, cred.ID, now); err != nil {
		return fmt.Errorf("mark credential used: %w", err)
	}
	cred.UsedAt = &now
	return nil
}

func (s *CredentialService) resolveUser(ctx context.Context, company string, userID *uuid.UUID) (uuid.UUID, error) {
	if userID != nil {
		profile, err := s.profiles.GetByID(ctx, *userID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("resolve user: %w", err)
		}
		return profile.ID, nil
	}

	placeholder := &model.Profile{
		ID:       uuid.New(),
		Name:     "Walk-up participant",
		Role:     model.RoleParticipant,
		Company:  company,
		CanLogin: true,
	}
	if err := s.profiles.Create(ctx, placeholder); err != nil {
		return uuid.Nil, fmt.Errorf("create placeholder profile: %w", err)
	}
	return placeholder.ID, nil
}
