package internal

import (
	"context"
	"time"
)

// Actor identifies who performs a workflow operation. It is resolved once per
// request from the authenticated user (user -> employee -> department) and
// threaded explicitly into every service call; workflow code never reads
// authentication state ambiently.
type Actor struct {
	UserID       int64
	DepartmentID int64
}

// HasDepartment reports whether the actor could be resolved to a department.
// Registry and workflow operations require one.
func (a Actor) HasDepartment() bool {
	return a.DepartmentID > 0
}

type ctxKey string

const ContextActorKey ctxKey = "actor"

func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	if actor, ok := ctx.Value(ContextActorKey).(Actor); ok {
		return actor, true
	}
	return Actor{}, false
}

func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, ContextActorKey, actor)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
