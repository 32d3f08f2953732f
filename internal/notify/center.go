// Package notify backs the notification drawer: ordering, read state and
// deduplicated pushes from background jobs.
package notify

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	appLog "dayos/internal/log"
	"dayos/internal/model"
)

// Repository persists notifications.
type Repository interface {
	InsertNotification(ctx context.Context, n model.Notification) error
	ListNotifications(ctx context.Context) ([]model.Notification, error)
	HasNotificationKey(ctx context.Context, key string) (bool, error)
	// MarkNotificationRead returns model.ErrNotFound for unknown ids.
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) (int, error)
}

// Center is the notification drawer.
type Center struct {
	repo Repository
}

// NewCenter returns a Center over repo.
func NewCenter(repo Repository) *Center {
	return &Center{repo: repo}
}

// Push stores n unless another notification already carries its Key.
// It reports whether n was stored.
func (c *Center) Push(ctx context.Context, n model.Notification) (bool, error) {
	if n.Key != "" {
		exists, err := c.repo.HasNotificationKey(ctx, n.Key)
		if err != nil {
			return false, err
		}
		if exists {
			return false, nil
		}
	}
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if err := c.repo.InsertNotification(ctx, n); err != nil {
		return false, err
	}
	appLog.Debug("notification pushed", "id", n.ID, "type", n.Type.String(), "title", n.Title)
	return true, nil
}

// List returns notifications newest first.
func (c *Center) List(ctx context.Context) ([]model.Notification, error) {
	items, err := c.repo.ListNotifications(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp.After(items[j].Timestamp)
	})
	return items, nil
}

// Unread counts notifications not yet marked read.
func (c *Center) Unread(ctx context.Context) (int, error) {
	items, err := c.repo.ListNotifications(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, it := range items {
		if !it.Read {
			n++
		}
	}
	return n, nil
}

// MarkRead marks one notification read. Unknown ids yield model.ErrNotFound.
func (c *Center) MarkRead(ctx context.Context, id string) error {
	return c.repo.MarkNotificationRead(ctx, id)
}

// MarkAllRead reports how many notifications flipped to read.
func (c *Center) MarkAllRead(ctx context.Context) (int, error) {
	n, err := c.repo.MarkAllNotificationsRead(ctx)
	if err != nil {
		return 0, err
	}
	appLog.Info("notifications marked read", "count", n)
	return n, nil
}

// FormatAge renders a drawer timestamp relative to now.
func FormatAge(ts, now time.Time) string {
	diff := now.Sub(ts)
	minutes := int(diff / time.Minute)
	hours := int(diff / time.Hour)
	days := int(diff / (24 * time.Hour))

	switch {
	case minutes < 1:
		return "Just now"
	case minutes < 60:
		return fmt.Sprintf("%dm ago", minutes)
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	}
	return fmt.Sprintf("%dd ago", days)
}
