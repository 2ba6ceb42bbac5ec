package notify

import (
	"context"
	"log/slog"
)

// LogPusher only logs pushes. It is the default backend for local runs.
type LogPusher struct {
	Log *slog.Logger
}

func (p LogPusher) Push(ctx context.Context, token string, msg Message) error {
	l := p.Log
	if l == nil {
		l = slog.Default()
	}
	l.InfoContext(ctx, "Push (log backend)", "token_suffix", tokenSuffix(token), "title", msg.Title)
	return nil
}

func tokenSuffix(token string) string {
	if len(token) <= 6 {
		return token
	}
	return "..." + token[len(token)-6:]
}
