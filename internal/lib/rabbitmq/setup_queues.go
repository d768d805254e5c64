package rabbitmq

// Exchange is the direct exchange carrying notification messages.
const Exchange = "notifications"

// Email queue and routing key used by the notification worker.
const (
	EmailQueue      = "notifications.email"
	EmailRoutingKey = "email"
)

// QueueConfig binds a durable queue to Exchange.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues returns the queues declared by producers and consumers.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: EmailQueue, RoutingKey: EmailRoutingKey},
	}
}
