package driven

// ConfigStore persists settings as flat dotted keys such as
// "index.strategy". Values are strings, integers or booleans; the settings
// service owns their meaning.
type ConfigStore interface {
	// Get returns the stored value and whether key is set.
	Get(key string) (any, bool)

	// Set stores value under key and persists at once. On a failed write
	// the previous value is kept.
	Set(key string, value any) error

	// Unset removes key and persists at once. Unsetting a missing key is
	// not an error.
	Unset(key string) error

	// Keys returns the stored keys in sorted order.
	Keys() []string

	// Path returns where the configuration lives, for messages.
	Path() string
}
