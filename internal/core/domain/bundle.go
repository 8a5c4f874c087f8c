package domain

// ImportReport summarises a bulk bundle import.
type ImportReport struct {
	// Skipped is true when the import was not attempted, either because the
	// bundle file was absent or the index already held records.
	Skipped bool `json:"skipped"`

	// Reason explains a skip.
	Reason string `json:"reason,omitempty"`

	// Imported is the number of records written.
	Imported int `json:"imported"`

	// Duplicates is the number of bundle records whose ID was already present.
	Duplicates int `json:"duplicates"`
}
