package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"classquest/internal/models"
)

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	debug      bool
}

// NewEmailService creates a new email service. An empty fromEmail produces a
// disabled service that skips every send.
func NewEmailService(awsRegion, fromEmail, fromName, appBaseURL string, debug bool) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{
			enabled: false,
			debug:   debug,
		}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sesv2.NewFromConfig(cfg)
	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &EmailService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		debug:      debug,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendWelcomeEmail sends a welcome email to new accounts
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): welcome to %s", toEmail)
		return nil
	}

	subject := "Welcome to ClassQuest!"
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #4a90e2; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #4a90e2; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Welcome to ClassQuest!</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>Your ClassQuest account is ready. Join a classroom with its code and your world will start growing with you.</p>
			<p style="text-align: center;">
				<a href="%s/login" class="button">Get Started</a>
			</p>
		</div>
		<div class="footer">
			<p>This is an automated email from ClassQuest. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, toName, s.appBaseURL)

	textBody := fmt.Sprintf(`Hi %s,

Your ClassQuest account is ready. Join a classroom with its code and your world will start growing with you.

Get started: %s/login

---
This is an automated email from ClassQuest. Please do not reply.
`, toName, s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendWeeklyDigest emails a student the outcome of their weekly evaluation
func (s *EmailService) SendWeeklyDigest(ctx context.Context, toEmail, toName, classroomName string, result *models.WeeklyResult) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): weekly digest to %s", toEmail)
		return nil
	}

	subject := fmt.Sprintf("Your %s week in %s", result.Tier, classroomName)

	bucketLine := func(name string, bucket *models.BucketScore) string {
		if bucket == nil {
			return fmt.Sprintf("<li>%s: no activity this week</li>", name)
		}
		return fmt.Sprintf("<li>%s: %d / %d points</li>", name, bucket.Points, bucket.Available)
	}
	bucketText := func(name string, bucket *models.BucketScore) string {
		if bucket == nil {
			return fmt.Sprintf("- %s: no activity this week", name)
		}
		return fmt.Sprintf("- %s: %d / %d points", name, bucket.Points, bucket.Available)
	}

	eventLine := ""
	eventText := ""
	if result.EventKey != nil {
		pretty := strings.ReplaceAll(*result.EventKey, "_", " ")
		eventLine = fmt.Sprintf("<p>Something new appeared in your world: <strong>%s</strong>!</p>", pretty)
		eventText = fmt.Sprintf("Something new appeared in your world: %s!\n", pretty)
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #4a90e2; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.tier { font-size: 24px; font-weight: bold; text-transform: capitalize; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Weekly Results</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>Your week of %s to %s in %s finished at the <span class="tier">%s</span> tier.</p>
			<ul>
				%s
				%s
				%s
			</ul>
			<p>Bonus XP earned: <strong>%d</strong></p>
			%s
		</div>
		<div class="footer">
			<p>This is an automated email from ClassQuest. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, toName, result.WeekStart, result.WeekEnd, classroomName, result.Tier,
		bucketLine("Attendance", result.Attendance),
		bucketLine("Assignments", result.Assignment),
		bucketLine("World care", result.Care),
		result.BonusXP, eventLine)

	textBody := fmt.Sprintf(`Hi %s,

Your week of %s to %s in %s finished at the %s tier.

%s
%s
%s

Bonus XP earned: %d
%s
---
This is an automated email from ClassQuest. Please do not reply.
`, toName, result.WeekStart, result.WeekEnd, classroomName, result.Tier,
		bucketText("Attendance", result.Attendance),
		bucketText("Assignments", result.Assignment),
		bucketText("World care", result.Care),
		result.BonusXP, eventText)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
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

	if s.debug {
		log.Printf("[DEBUG] Calling SES SendEmail: to=%s, subject=%s", toEmail, subject)
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] Message ID: %s", *result.MessageId)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
