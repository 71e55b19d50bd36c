package notification

import (
	"context"
	"log/slog"
)

// Hook is one deferred notification call scheduled by an action handler.
type Hook func(ctx context.Context) error

// Hooks collects notification calls during an action and runs them only after
// the mutation has been persisted. Each hook fails independently; failures are
// logged and never propagate to the caller.
type Hooks struct {
	hooks  []Hook
	logger *slog.Logger
}

// NewHooks creates an empty post-commit hook list.
func NewHooks(logger *slog.Logger) *Hooks {
	return &Hooks{logger: logger}
}

// Add schedules a hook.
func (h *Hooks) Add(hook Hook) {
	h.hooks = append(h.hooks, hook)
}

// Run executes every scheduled hook in order.
func (h *Hooks) Run(ctx context.Context) {
	for _, hook := range h.hooks {
		if err := hook(ctx); err != nil {
			h.logger.WarnContext(ctx, "Notification dispatch failed", "error", err)
		}
	}
}
