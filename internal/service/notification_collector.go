package service

import (
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/edu-crm-api/pkg/response"
)

// NotificationCollector gathers the messages one request raises so they can
// travel back in the response envelope. Every message is also logged.
type NotificationCollector struct {
	mu     sync.Mutex
	notes  []response.Notification
	logger *zap.Logger
}

// NewNotificationCollector builds an empty collector.
func NewNotificationCollector(logger *zap.Logger) *NotificationCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationCollector{logger: logger}
}

// Success records a success message.
func (n *NotificationCollector) Success(message string) {
	n.add(response.KindSuccess, message)
	n.logger.Info("wizard notification", zap.String("kind", response.KindSuccess), zap.String("message", message))
}

// Error records an error message.
func (n *NotificationCollector) Error(message string) {
	n.add(response.KindError, message)
	n.logger.Warn("wizard notification", zap.String("kind", response.KindError), zap.String("message", message))
}

// Notifications returns what was collected so far.
func (n *NotificationCollector) Notifications() []response.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]response.Notification(nil), n.notes...)
}

func (n *NotificationCollector) add(kind, message string) {
	n.mu.Lock()
	n.notes = append(n.notes, response.Notification{Kind: kind, Message: message})
	n.mu.Unlock()
}
