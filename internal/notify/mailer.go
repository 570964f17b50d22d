// Package notify delivers transactional email for signing milestones.
package notify

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/google/uuid"

	stderrors "deedflow/internal/common/errors"
	"deedflow/internal/common/logger"
)

// Mailer sends one rendered HTML email and returns the provider's opaque
// send id.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) (string, error)
}

// SESAPI is the slice of the SES client the mailer uses, split out for
// mocking.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESMailer struct {
	client SESAPI
	from   string
	logger logger.Logger
}

func NewSESMailer(ctx context.Context, region, from string, log logger.Logger) (*SESMailer, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SESMailer{
		client: ses.NewFromConfig(awsCfg),
		from:   from,
		logger: log.WithFields(map[string]interface{}{"component": "mailer"}),
	}, nil
}

// NewSESMailerWithClient wires an existing SES client. Used by tests.
func NewSESMailerWithClient(client SESAPI, from string, log logger.Logger) *SESMailer {
	return &SESMailer{client: client, from: from, logger: log}
}

func (m *SESMailer) Send(ctx context.Context, to, subject, htmlBody string) (string, error) {
	out, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(htmlBody)},
			},
		},
		Source: aws.String(m.from),
	})
	if err != nil {
		return "", stderrors.NewNotificationSendFailed(to, err)
	}

	m.logger.Info("email sent", map[string]interface{}{
		"to":        to,
		"subject":   subject,
		"messageId": aws.ToString(out.MessageId),
	})
	return aws.ToString(out.MessageId), nil
}

// LogMailer stands in when email delivery is disabled: it logs the send and
// fabricates an id so the surrounding flow behaves identically.
type LogMailer struct {
	logger logger.Logger
}

func NewLogMailer(log logger.Logger) *LogMailer {
	return &LogMailer{logger: log.WithFields(map[string]interface{}{"component": "mailer", "mode": "log-only"})}
}

func (m *LogMailer) Send(_ context.Context, to, subject, _ string) (string, error) {
	id := uuid.New().String()
	m.logger.Info("email suppressed (delivery disabled)", map[string]interface{}{
		"to":      to,
		"subject": subject,
		"sendId":  id,
	})
	return id, nil
}
