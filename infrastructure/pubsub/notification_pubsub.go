package pubsub

import (
	"context"
	"log"

	"postpilot/infrastructure/configuration"
	"postpilot/infrastructure/logger"

	"cloud.google.com/go/pubsub"
)

// NewPubSub creates the Pub/Sub client used for notification delivery.
// Returns nil when no project is configured.
func NewPubSub(ctx context.Context) (*pubsub.Client, error) {
	projectID := configuration.C.Pubsub.ProjectID
	if projectID == "" {
		logger.GetLogger().Info("Pub/Sub project not configured, notifications via Pub/Sub disabled")
		return nil, nil
	}
	return pubsub.NewClient(ctx, projectID)
}

type INotificationPubSub interface {
	Publish(ctx context.Context, topic string, payload []byte) (string, error)
	GetSubscription(subID string) (*pubsub.Subscription, error)
}

type NotificationPubSub struct {
	PubSubClient *pubsub.Client
}

func NewNotificationPubSub(pubSubClient *pubsub.Client) INotificationPubSub {
	return &NotificationPubSub{
		PubSubClient: pubSubClient,
	}
}

func (notificationPubSub *NotificationPubSub) Publish(
	ctx context.Context,
	topicName string,
	payload []byte,
) (string, error) {
	msg := &pubsub.Message{
		Data: payload,
	}

	topic := notificationPubSub.PubSubClient.Topic(topicName)

	// Create the topic if it doesn't exist.
	exists, err := topic.Exists(ctx)
	if err != nil {
		return "", err
	}
	if !exists {
		log.Printf("Topic %v doesn't exist - creating it", topicName)
		_, err = notificationPubSub.PubSubClient.CreateTopic(ctx, topicName)
		if err != nil {
			return "", err
		}
	}

	serverId, err := topic.Publish(ctx, msg).Get(ctx)
	if err != nil {
		return "", err
	}

	logger.GetLogger().WithField("server ID", serverId).Info("Notification published")
	return serverId, nil
}

func (notificationPubSub *NotificationPubSub) GetSubscription(
	subID string,
) (*pubsub.Subscription, error) {
	logger.GetLogger().WithField("subID", subID).Info("PubSub starting...")

	return notificationPubSub.PubSubClient.Subscription(subID), nil
}
