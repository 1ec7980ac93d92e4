package notification

import (
	"context"
	"encoding/json"

	"postpilot/domain/model"
	"postpilot/infrastructure/logger"
	"postpilot/infrastructure/pubsub"
	"postpilot/infrastructure/servicebus"
)

// INotifier delivers user-facing notifications. Delivery is best-effort: the
// executor logs failures and moves on, the post row stays authoritative.
type INotifier interface {
	Notify(ctx context.Context, n *model.Notification) error
}

// LogNotifier writes notifications to the application log. Used when no
// delivery backend is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, n *model.Notification) error {
	logger.GetLogger().
		WithField("userId", n.UserID).
		WithField("title", n.Title).
		Info(n.Content)
	return nil
}

// PubSubNotifier publishes notifications to a Pub/Sub topic.
type PubSubNotifier struct {
	client pubsub.INotificationPubSub
	topic  string
}

func NewPubSubNotifier(client pubsub.INotificationPubSub, topic string) *PubSubNotifier {
	return &PubSubNotifier{client: client, topic: topic}
}

func (p *PubSubNotifier) Notify(ctx context.Context, n *model.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	_, err = p.client.Publish(ctx, p.topic, payload)
	return err
}

// ServiceBusNotifier sends notifications to a Service Bus queue.
type ServiceBusNotifier struct {
	sender servicebus.INotificationServiceBus
}

func NewServiceBusNotifier(sender servicebus.INotificationServiceBus) *ServiceBusNotifier {
	return &ServiceBusNotifier{sender: sender}
}

func (s *ServiceBusNotifier) Notify(_ context.Context, n *model.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return s.sender.SendMessage(payload)
}

// Fanout delivers through every configured sink, returning the last error.
type Fanout struct {
	sinks []INotifier
}

func NewFanout(sinks ...INotifier) *Fanout {
	return &Fanout{sinks: sinks}
}

func (f *Fanout) Notify(ctx context.Context, n *model.Notification) error {
	var last error
	for _, sink := range f.sinks {
		if err := sink.Notify(ctx, n); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Notification sink failed")
			last = err
		}
	}
	return last
}
