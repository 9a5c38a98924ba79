package services

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/sharehub/sharehub/sharehub/database/models"
	"github.com/sharehub/sharehub/sharehub/logger"
)

// SNSNotifier publishes claim notifications to an SNS topic. Delivery is
// best-effort: failures are logged and never propagated to the claim flow.
type SNSNotifier struct {
	client   *sns.Client
	topicARN string
}

func NewSNSNotifier(key, secret, region, topicARN string) *SNSNotifier {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		panic(fmt.Sprintf("Unable to load notify config: %v", err))
	}

	return &SNSNotifier{
		client:   sns.NewFromConfig(cfg),
		topicARN: topicARN,
	}
}

func (n *SNSNotifier) ClaimCreated(ctx context.Context, listing *models.Listing, claim *models.Claim) {
	subject := fmt.Sprintf("Your listing %q was claimed", listing.Title)
	message := fmt.Sprintf(
		"Hi %s,\n\n%s claimed your listing %q. Arrange the handover through ShareHub.\n\nListing: %s",
		listing.CreatedByName, claim.UserName, listing.Title, listing.ID,
	)

	_, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"notification_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String("email"),
			},
			"recipient": {
				DataType:    aws.String("String"),
				StringValue: aws.String(listing.CreatedBy),
			},
		},
	})

	if err != nil {
		logger.LogError("Failed to publish claim notification", err,
			slog.String("listing_id", listing.ID),
			slog.String("claim_id", claim.ID))
		return
	}

	slog.Debug("Claim notification published",
		slog.String("listing_id", listing.ID),
		slog.String("owner", listing.CreatedBy))
}

// NopNotifier drops notifications. Used when notify is disabled in config and
// in tests.
type NopNotifier struct{}

func (NopNotifier) ClaimCreated(context.Context, *models.Listing, *models.Claim) {}
