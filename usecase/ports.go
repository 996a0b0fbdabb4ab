package usecase

import "context"

const (
	EntityTask = "task"
	EntityUser = "user"

	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionLogin  = "login"
)

// ActivityRecorder receives best-effort audit events from use cases. A
// failed recording must never fail the business operation that emitted it.
type ActivityRecorder interface {
	Record(ctx context.Context, userID, entity, action, detail string) error
}
