package repo

import (
	"context"

	"github.com/groupmute/groupmute/internal/biz/domain"
)

// NotificationPlatform invokes intents on notifications still shown by the platform
type NotificationPlatform interface {
	// SendContent fires the notification's content intent (a tap)
	SendContent(ctx context.Context, event *domain.NotificationEvent) error

	// SendAction fires action index of the platform-reported actions.
	// inputs carries remote input results and is nil for plain actions.
	SendAction(ctx context.Context, event *domain.NotificationEvent, index int, inputs map[string]string) error
}
