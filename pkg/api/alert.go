package api

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// Alert display durations.
const (
	ErrorAlertTTL   = 5 * time.Second
	SuccessAlertTTL = 3 * time.Second
)

// AlertLevel is the severity of an [Alert].
type AlertLevel string

const (
	AlertError   AlertLevel = "error"
	AlertSuccess AlertLevel = "success"
)

// Alert is a dismissible notification for the user.
type Alert struct {
	Level   AlertLevel
	Message string
	// TTL is how long the alert stays visible.
	TTL time.Duration
	// Retry repeats the failed request; nil for success alerts.
	Retry func(context.Context) error
}

// Alerter shows alerts to the user.
type Alerter interface {
	Alert(ctx context.Context, a Alert)
}

// AlertFunc adapts a function to [Alerter].
type AlertFunc func(context.Context, Alert)

func (f AlertFunc) Alert(ctx context.Context, a Alert) { f(ctx, a) }

// LogAlerter writes alerts to a logger.
type LogAlerter struct {
	Logger *log.Logger
}

func (l LogAlerter) Alert(_ context.Context, a Alert) {
	if l.Logger == nil {
		return
	}
	if a.Level == AlertError {
		l.Logger.Error(a.Message)
		return
	}
	l.Logger.Info(a.Message)
}

type discardAlerter struct{}

func (discardAlerter) Alert(context.Context, Alert) {}
