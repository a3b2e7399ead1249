package worker

import (
	"github.com/queuedesk/queue-service/internal/service"
)

// StartNotificationWorker registers the Redis fan-out handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
