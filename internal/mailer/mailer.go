// Package mailer sends notification emails through Amazon SES.
package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/rs/zerolog"

	"github.com/evaluia/examcore-backend/internal/config"
)

// Mailer sends platform emails via SES. When no from-address is configured
// the mailer is disabled and every send becomes a logged no-op.
type Mailer struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	log        zerolog.Logger
}

// New creates a Mailer from configuration.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Mailer, error) {
	l := log.With().Str("component", "mailer").Logger()

	if cfg.SESFromEmail == "" {
		l.Info().Msg("Email disabled: SES_FROM_EMAIL not configured")
		return &Mailer{enabled: false, log: l}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	l.Info().
		Str("from", cfg.SESFromEmail).
		Str("region", cfg.AWSRegion).
		Msg("Email enabled")

	return &Mailer{
		client:     sesv2.NewFromConfig(awsCfg),
		fromEmail:  cfg.SESFromEmail,
		fromName:   cfg.SESFromName,
		appBaseURL: cfg.AppBaseURL,
		enabled:    true,
		log:        l,
	}, nil
}

// Enabled reports whether emails are actually sent.
func (m *Mailer) Enabled() bool { return m.enabled }

// SendCredentialEmail delivers freshly issued exam credentials. The
// plaintext password exists only in this message.
func (m *Mailer) SendCredentialEmail(ctx context.Context, toEmail, toName, username, password, subjectTitle string, expiresAt *time.Time) error {
	if !m.enabled {
		m.log.Info().Str("to", toEmail).Msg("Skipping credential email, mailer disabled")
		return nil
	}

	expiry := "These credentials do not expire."
	if expiresAt != nil {
		expiry = fmt.Sprintf("These credentials expire on %s.", expiresAt.Format("2 January 2006 15:04 MST"))
	}

	subject := fmt.Sprintf("Your access credentials for %s", subjectTitle)
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #2d5986; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.creds { background-color: #fff; border: 1px solid #ddd; padding: 15px; font-family: monospace; font-size: 16px; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Your Assessment Credentials</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>You have been invited to take <strong>%s</strong>. Sign in with:</p>
			<div class="creds">
				<p>Username: <strong>%s</strong></p>
				<p>Password: <strong>%s</strong></p>
			</div>
			<p>%s</p>
			<p>Start here: <a href="%s/take">%s/take</a></p>
		</div>
		<div class="footer">
			<p>This is an automated email from ExamCore. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, toName, subjectTitle, username, password, expiry, m.appBaseURL, m.appBaseURL)

	textBody := fmt.Sprintf(`Hi %s,

You have been invited to take %s. Sign in with:

Username: %s
Password: %s

%s

Start here: %s/take

---
This is an automated email from ExamCore. Please do not reply.
`, toName, subjectTitle, username, password, expiry, m.appBaseURL)

	return m.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (m *Mailer) send(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := m.fromEmail
	if m.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", m.fromName, m.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := m.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("send email to %s: %w", toEmail, err)
	}

	m.log.Info().Str("to", toEmail).Str("subject", subject).Msg("Email sent")
	return nil
}
