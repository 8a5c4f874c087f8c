package driven

import "context"

// Rephraser turns a journal entry into a short statement of its themes,
// which is then searched like any query. Journal mode is off without one.
type Rephraser interface {
	Rephrase(ctx context.Context, entry string) (string, error)

	// ModelName names the model for logs and the config command.
	ModelName() string

	// Ping checks the backend answers without running the model.
	Ping(ctx context.Context) error

	Close() error
}
