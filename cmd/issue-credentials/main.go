package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/evaluia/examcore-backend/internal/config"
	"github.com/evaluia/examcore-backend/internal/database"
	"github.com/evaluia/examcore-backend/internal/logger"
	"github.com/evaluia/examcore-backend/internal/mailer"
	"github.com/evaluia/examcore-backend/internal/model"
	"github.com/evaluia/examcore-backend/internal/repository"
	"github.com/evaluia/examcore-backend/internal/service"
)

// Bulk-issues exam credentials from a CSV of "name,email" rows. Each row
// gets a walk-up profile, a generated username/password pair and, when SES
// is configured, a notification email. Plaintext passwords are printed as
// CSV on stdout for one-time distribution.
func main() {
	var (
		csvPath  string
		examID   string
		testID   string
		company  string
		expires  int
		single   bool
		sendMail bool
	)
	flag.StringVar(&csvPath, "csv", "", "CSV file with name,email rows (required)")
	flag.StringVar(&examID, "exam", "", "Exam ID to bind credentials to")
	flag.StringVar(&testID, "test", "", "Psychometric test ID to bind credentials to")
	flag.StringVar(&company, "company", "", "Tenant company (required)")
	flag.IntVar(&expires, "expires", 72, "Credential lifetime in hours (0 = never)")
	flag.BoolVar(&single, "single-use", true, "Issue single-use credentials")
	flag.BoolVar(&sendMail, "email", false, "Send credential emails via SES")
	flag.Parse()

	if csvPath == "" || company == "" || (examID == "") == (testID == "") {
		fmt.Fprintln(os.Stderr, "Usage: issue-credentials -csv people.csv -company acme (-exam ID | -test ID) [-expires 72] [-single-use] [-email]")
		os.Exit(2)
	}

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	var mail *mailer.Mailer
	if sendMail {
		mail, err = mailer.New(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize mailer")
		}
	}

	credentialService := service.NewCredentialService(
		repository.NewCredentialRepository(pool),
		repository.NewProfileRepository(pool),
		repository.NewExamRepository(pool),
		repository.NewTestRepository(pool),
		mailerOrNil(mail),
		cfg.BcryptCost,
		log,
	)

	req := model.IssueCredentialRequest{
		SingleUse:      single,
		ExpiresInHours: expires,
	}
	if examID != "" {
		id, err := uuid.Parse(examID)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid exam ID")
		}
		req.ExamID = &id
	} else {
		id, err := uuid.Parse(testID)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid test ID")
		}
		req.TestID = &id
	}

	f, err := os.Open(csvPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open CSV")
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse CSV")
	}

	out := csv.NewWriter(os.Stdout)
	defer out.Flush()
	out.Write([]string{"name", "email", "username", "password"})

	issued := 0
	for i, row := range rows {
		if len(row) < 2 {
			log.Warn().Int("row", i+1).Msg("Skipping malformed row")
			continue
		}
		name, email := row[0], row[1]

		rowReq := req
		if sendMail {
			rowReq.NotifyEmail = email
			rowReq.NotifyName = name
		}

		cred, password, err := credentialService.Issue(ctx, company, rowReq)
		if err != nil {
			log.Error().Err(err).Str("email", email).Msg("Issue failed")
			continue
		}

		out.Write([]string{name, email, cred.Username, password})
		issued++
	}

	log.Info().Int("issued", issued).Int("total", len(rows)).Msg("Done")
}

// mailerOrNil keeps the service's mailer interface nil when email is off,
// instead of a typed-nil *mailer.Mailer.
func mailerOrNil(m *mailer.Mailer) service.CredentialMailer {
	if m == nil {
		return nil
	}
	return m
}
