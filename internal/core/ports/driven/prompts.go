package driven

// Prompt names shared by the prompt store and the chat rephrasers.
const (
	// PromptJournalSystem is the system prompt. It takes no arguments.
	PromptJournalSystem = "journal_system"

	// PromptJournalRephrase is the user prompt; %s receives the entry.
	PromptJournalRephrase = "journal_rephrase"
)

// PromptStore serves prompt templates by name, typically from files the
// user may edit.
type PromptStore interface {
	// Load returns the template for name. Unknown names are an error.
	Load(name string) (string, error)

	// Reload drops cached templates.
	Reload()
}

// PromptStoreAware is implemented by rephrasers whose prompts can be
// replaced after construction. Without a store they use built-in prompts.
type PromptStoreAware interface {
	SetPromptStore(store PromptStore)
}
