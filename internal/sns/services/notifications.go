package services

import (
	"context"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"philcali.me/kitchen/internal/notifications"
)

// SNSAPI is the part of *sns.Client the notification service uses.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNS subjects are limited to 100 characters.
const maxSubjectLength = 100

type NotificationSNSService struct {
	Sns      SNSAPI
	TopicArn string
}

func NewNotificationService(client SNSAPI, topicArn string) notifications.NotificationService {
	return &NotificationSNSService{
		Sns:      client,
		TopicArn: topicArn,
	}
}

func (n *NotificationSNSService) Publish(ctx context.Context, input notifications.PublishInput) (*notifications.PublishOutput, error) {
	subject := input.Subject
	if utf8.RuneCountInString(subject) > maxSubjectLength {
		subject = string([]rune(subject)[:maxSubjectLength-3]) + "..."
	}
	output, err := n.Sns.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.TopicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(input.Message),
	})
	if err != nil {
		return nil, err
	}
	return &notifications.PublishOutput{
		MessageId: aws.ToString(output.MessageId),
	}, nil
}
