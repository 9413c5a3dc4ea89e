package mqtt

import (
	"context"

	"github.com/manav03panchal/babyreminder/internal/model"
)

// NotificationSink shows notifications as retained broker messages so any
// subscriber, such as a phone app or a dashboard, sees the current ones.
type NotificationSink struct {
	pub Publisher
}

// NewNotificationSink wraps a publisher.
func NewNotificationSink(pub Publisher) *NotificationSink {
	return &NotificationSink{pub: pub}
}

// Notify publishes n under its id.
func (s *NotificationSink) Notify(_ context.Context, n *model.Notification) error {
	return s.pub.PublishNotification(n)
}

// Cancel clears the retained notification.
func (s *NotificationSink) Cancel(_ context.Context, id int) error {
	return s.pub.ClearNotification(id)
}
