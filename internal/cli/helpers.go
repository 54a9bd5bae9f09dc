package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mojomast/arbor/internal/logging"
	"github.com/mojomast/arbor/pkg/domain"
)

// createLogger configures the application logger. In debug mode it
// writes to stderr so logs stay separate from the conversation UI.
func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// printSystemMessage prints a standardized system message to stdout.
func printSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.Debug("Enter Node", "node_id", e.NodeID, "auto", e.Auto)
		},
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			logger.Debug("Leave Node", "node_id", e.NodeID)
		},
		OnChoice: func(ctx context.Context, e *domain.ChoiceEvent) {
			logger.Debug("Choice", "node_id", e.NodeID, "text", e.Text, "goto", e.Goto)
		},
		OnEffect: func(ctx context.Context, e *domain.EffectEvent) {
			logger.Debug("Effect", "node_id", e.NodeID, "kind", e.Kind, "key", e.Key)
		},
		OnSessionEnd: func(ctx context.Context, e *domain.SessionEvent) {
			logger.Debug("Session End", "status", e.Status, "reason", e.Reason)
		},
	}
}

func isInterrupted(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, io.EOF)
}

func handleExecutionError(err error) error {
	if err == nil {
		return nil
	}
	if isInterrupted(err) {
		return nil // exit 0 for interruptions
	}
	return err
}
