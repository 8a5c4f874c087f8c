package driven

import "time"

// Recorder receives operational measurements from core services.
type Recorder interface {
	// ObserveSearch records one search call.
	ObserveSearch(d time.Duration, results int, filtered bool, err error)

	// ObserveEmbed records one embedding call over n texts.
	ObserveEmbed(d time.Duration, n int, err error)

	// IngestRecord counts one ingestion outcome (inserted, duplicate, failed).
	IngestRecord(outcome string)

	// SetIndexSize reports the current number of indexed records.
	SetIndexSize(n int)
}

// NopRecorder discards all measurements.
type NopRecorder struct{}

func (NopRecorder) ObserveSearch(time.Duration, int, bool, error) {}
func (NopRecorder) ObserveEmbed(time.Duration, int, error)        {}
func (NopRecorder) IngestRecord(string)                           {}
func (NopRecorder) SetIndexSize(int)                              {}
