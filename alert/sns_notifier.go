package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"

	"github.com/duwalace/App-Rango-sub000/models"
)

// SNSNotifier publishes new-order alerts to an SNS topic. Delivery to the
// merchant's device (desktop/sound) is handled by the topic's consumers.
type SNSNotifier struct {
	client   *sns.Client
	topicArn string
	logger   *zap.Logger
}

// NewSNSNotifier loads the default AWS config and returns an SNS-backed notifier.
func NewSNSNotifier(ctx context.Context, topicArn string, logger *zap.Logger) (*SNSNotifier, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return &SNSNotifier{
		client:   sns.NewFromConfig(cfg),
		topicArn: topicArn,
		logger:   logger,
	}, nil
}

func (n *SNSNotifier) NotifyNewOrders(ctx context.Context, storeID string, previousCount, newCount int) error {
	evt := models.NewOrderAlertEvent{
		EventType:     "orders.new",
		StoreID:       storeID,
		PreviousCount: previousCount,
		NewCount:      newCount,
		Timestamp:     time.Now().UTC(),
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	input := &sns.PublishInput{
		TopicArn: sdkaws.String(n.topicArn),
		Message:  sdkaws.String(string(data)),
	}
	if _, err := n.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("sns publish failed for topic %s: %w", n.topicArn, err)
	}

	n.logger.Info("New-order alert published",
		zap.String("store_id", storeID),
		zap.Int("previous_count", previousCount),
		zap.Int("new_count", newCount),
	)
	return nil
}

// LogNotifier is the fallback sink used when SNS is not configured.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n *LogNotifier) NotifyNewOrders(_ context.Context, storeID string, previousCount, newCount int) error {
	n.Logger.Info("New orders",
		zap.String("store_id", storeID),
		zap.Int("previous_count", previousCount),
		zap.Int("new_count", newCount),
	)
	return nil
}
