package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/evaluia/examcore-backend/internal/config"
	"github.com/evaluia/examcore-backend/internal/model"
)

// ErrReportsDisabled is returned when no Gemini API key is configured.
var ErrReportsDisabled = errors.New("report generation is disabled")

// ReportService produces narrative assessment reports with Gemini.
type ReportService struct {
	client *genai.GenerativeModel
	log    zerolog.Logger
}

// NewReportService creates a ReportService. Without an API key the service
// stays up but every generation call returns ErrReportsDisabled.
func NewReportService(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*ReportService, error) {
	l := log.With().Str("component", "report_service").Logger()

	if cfg.GeminiAPIKey == "" {
		l.Warn().Msg("GEMINI_API_KEY not set, report generation disabled")
		return &ReportService{log: l}, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("initialize Gemini client: %w", err)
	}

	return &ReportService{
		client: client.GenerativeModel(cfg.GeminiModel),
		log:    l,
	}, nil
}

// Enabled reports whether generation calls can succeed.
func (s *ReportService) Enabled() bool { return s.client != nil }

// GenerateNarrative produces the report body for a completed session from
// its question and answer snapshots.
func (s *ReportService) GenerateNarrative(ctx context.Context, kind model.TestKind, questions, answers json.RawMessage) (string, error) {
	if s.client == nil {
		return "", ErrReportsDisabled
	}

	prompt := buildReportPrompt(kind, questions, answers)

	resp, err := s.client.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("model returned no content")
	}

	var body strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			body.WriteString(string(txt))
		}
	}

	narrative := strings.TrimSpace(body.String())
	if narrative == "" {
		return "", errors.New("model returned no text content")
	}
	return narrative, nil
}

func buildReportPrompt(kind model.TestKind, questions, answers json.RawMessage) string {
	var b strings.Builder

	switch kind {
	case model.KindPsychometric:
		b.WriteString("You are an occupational psychologist writing a candidate report.\n")
		b.WriteString("The candidate completed a personality assessment (Big Five / OCEAN, or an HTP projective test).\n")
		b.WriteString("Summarize the candidate's profile across the relevant dimensions, in neutral, professional language.\n")
		b.WriteString("Do not diagnose. Do not speculate beyond the responses given.\n\n")
	case model.KindTurnover:
		b.WriteString("You are an HR analyst writing a retention-risk summary.\n")
		b.WriteString("The candidate completed a turnover-intention questionnaire.\n")
		b.WriteString("Summarize the main signals and their likely drivers in neutral, professional language.\n\n")
	default:
		b.WriteString("You are an assessment analyst writing a candidate summary.\n")
		b.WriteString("The candidate completed a reliability/integrity assessment.\n")
		b.WriteString("Summarize notable response patterns in neutral, professional language.\n\n")
	}

	b.WriteString("Questions (JSON):\n---\n")
	b.Write(questions)
	b.WriteString("\n---\n\nAnswers (JSON):\n---\n")
	b.Write(answers)
	b.WriteString("\n---\n\n")
	b.WriteString("Write the report as plain prose with short section headings. Keep it under 600 words.\n")

	return b.String()
}
