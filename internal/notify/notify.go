// Package notify carries the one-shot success/failure messages the API
// surfaces to users, and delivers them to logs, live subscribers and MQTT.
package notify

import (
	"context"
	"log/slog"
	"time"
)

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

type Notification struct {
	ProjectID   string    `json:"projectId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Variant     Variant   `json:"variant"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Notifier delivers a notification without blocking the caller on slow
// consumers. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

func Success(projectID, title, description string) Notification {
	return Notification{
		ProjectID:   projectID,
		Title:       title,
		Description: description,
		Variant:     VariantDefault,
		CreatedAt:   time.Now().UTC(),
	}
}

func Failure(projectID, title string, err error) Notification {
	n := Notification{
		ProjectID: projectID,
		Title:     title,
		Variant:   VariantDestructive,
		CreatedAt: time.Now().UTC(),
	}
	if err != nil {
		n.Description = err.Error()
	}
	return n
}

type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(ctx context.Context, n Notification) {
	level := slog.LevelInfo
	if n.Variant == VariantDestructive {
		level = slog.LevelWarn
	}
	l.logger.Log(ctx, level, "notification",
		"project_id", n.ProjectID,
		"title", n.Title,
		"description", n.Description,
		"variant", n.Variant,
	)
}

// Multi fans a notification out to every non-nil notifier in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) {
	for _, notifier := range m {
		if notifier != nil {
			notifier.Notify(ctx, n)
		}
	}
}
