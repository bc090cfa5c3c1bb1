package services

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/fbawholesale/ops-service/internal/models"
)

// EmailService sends access-approval notifications via AWS SES (SESv2 API).
// A nil service drops notifications; role assignment never fails on email.
type EmailService struct {
	sesClient *sesv2.Client
	fromEmail string
}

// NewEmailService creates an email service from the ambient AWS config, or
// nil when SES_FROM_EMAIL is not set.
func NewEmailService(ctx context.Context) *EmailService {
	fromEmail := os.Getenv("SES_FROM_EMAIL")
	if fromEmail == "" {
		return nil
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil
	}
	if cfg.Region == "" {
		region := os.Getenv("SES_AWS_REGION")
		if region == "" {
			region = os.Getenv("AWS_DEFAULT_REGION")
		}
		if region == "" {
			region = "eu-central-1"
		}
		cfg.Region = region
	}
	return &EmailService{
		sesClient: sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
	}
}

// SendAccessApproved tells a previously pending user which role they were
// granted. Safe on a nil service.
func (e *EmailService) SendAccessApproved(ctx context.Context, toEmail, fullName string, role models.Role) error {
	if e == nil {
		return nil
	}
	subject := "FBA Wholesale - Your access has been approved"
	body := e.generateApprovalHTML(fullName, role)
	return e.sendEmail(ctx, toEmail, subject, body)
}

// sendEmail sends an email via AWS SESv2 using the instance role
func (e *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody string) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(e.fromEmail),
		Destination:      &sestypes.Destination{ToAddresses: []string{toEmail}},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(subject)},
				Body:    &sestypes.Body{Html: &sestypes.Content{Data: aws.String(htmlBody)}},
			},
		},
	}
	if _, err := e.sesClient.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// generateApprovalHTML creates the HTML email template
func (e *EmailService) generateApprovalHTML(fullName string, role models.Role) string {
	name := fullName
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Access Approved</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2>Your access has been approved</h2>
    <p>Hi %s,</p>
    <p>An administrator has granted you the <strong>%s</strong> role. You can now sign in and access your organization's dashboard.</p>
    <p>If you did not expect this email, you can safely ignore it.</p>
</body>
</html>`, name, role)
}
