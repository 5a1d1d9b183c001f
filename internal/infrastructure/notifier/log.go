package notifier

import (
	"context"
	"fmt"

	"organizer/internal/domain/constant"
	"organizer/internal/domain/entity"
	"organizer/internal/pkg/logger"
)

// LogNotifier writes fired reminders to the application log. It is used when
// no push channel is configured.
type LogNotifier struct {
	log logger.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify logs the notification content.
func (n *LogNotifier) Notify(_ context.Context, content entity.NotificationContent) error {
	n.log.Info(fmt.Sprintf("NOTIFY: title=%q body=%q data=%v", content.Title, content.Body, content.Data))
	return nil
}

// Permission is always granted for the log channel.
func (n *LogNotifier) Permission(context.Context) constant.Permission {
	return constant.PermissionGranted
}
