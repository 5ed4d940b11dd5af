package dialog

import (
	"context"
	"log"
)

type eventIDKey struct{}

// WithEventID tags ctx with the correlation id of the chat event being handled.
func WithEventID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, eventIDKey{}, id)
}

func EventID(ctx context.Context) string {
	id, _ := ctx.Value(eventIDKey{}).(string)
	return id
}

func logf(ctx context.Context, format string, args ...interface{}) {
	if id := EventID(ctx); id != "" {
		format = "[" + id + "] " + format
	}
	log.Printf(format, args...)
}
