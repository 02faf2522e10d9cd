package app

import (
	"context"
	"os/signal"
	"syscall"
)

// ContextWithSignals returns a context cancelled on SIGINT or SIGTERM. A
// cancelled merge stops between students and writes nothing.
func ContextWithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
