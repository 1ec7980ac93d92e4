package servicebus

import (
	"context"
	"fmt"

	"postpilot/infrastructure/configuration"
	"postpilot/infrastructure/logger"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
)

// NewServiceBus creates the Service Bus client used for notification
// delivery. Returns nil when no namespace is configured.
func NewServiceBus() (*azservicebus.Client, error) {
	namespace := configuration.C.ServiceBus.Namespace
	if namespace == "" {
		logger.GetLogger().Info("Service Bus namespace not configured, notifications via Service Bus disabled")
		return nil, nil
	}

	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}
	return azservicebus.NewClient(fmt.Sprintf("%s.servicebus.windows.net", namespace), credential, nil)
}

type INotificationServiceBus interface {
	SendMessage(message []byte) error
}

type NotificationServiceBus struct {
	AzservicebusClient *azservicebus.Client
	Queue              string
}

func NewNotificationServiceBus(azServiceBusClient *azservicebus.Client, queue string) INotificationServiceBus {
	return &NotificationServiceBus{AzservicebusClient: azServiceBusClient, Queue: queue}
}

func (notificationServiceBus *NotificationServiceBus) SendMessage(message []byte) error {
	sender, err := notificationServiceBus.AzservicebusClient.NewSender(notificationServiceBus.Queue, nil)
	if err != nil {
		logger.GetLogger().
			WithField("error", err).
			Error("Error while making new sender service bus.")
		return err
	}
	defer func(sender *azservicebus.Sender, ctx context.Context) {
		err := sender.Close(ctx)
		if err != nil {
			logger.GetLogger().
				WithField("error", err).
				Error("Error while closing sender.")
		}
	}(sender, context.Background())

	sbMessage := &azservicebus.Message{
		Body: message,
	}
	err = sender.SendMessage(context.Background(), sbMessage, nil)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while sending message.")
		return err
	}

	return nil
}
