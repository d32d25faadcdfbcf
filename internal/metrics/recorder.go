package metrics

import "time"

// BuildOutcomeLabel is the final status of a run.
type BuildOutcomeLabel string

const (
	BuildOutcomeSuccess  BuildOutcomeLabel = "success"
	BuildOutcomeEmpty    BuildOutcomeLabel = "empty"
	BuildOutcomeFailed   BuildOutcomeLabel = "failed"
	BuildOutcomeCanceled BuildOutcomeLabel = "canceled"
)

// Skip reasons for inputs that produced no item.
const (
	SkipNoMetadata    = "no_metadata"
	SkipMissingFolder = "missing_folder"
)

// Recorder defines observability hooks for a publication run.
type Recorder interface {
	IncItemPublished(kind string)
	IncInputSkipped(reason string)
	AddArchiveFiles(n int)
	AddBrokenLinks(n int)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome BuildOutcomeLabel)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not requested).
type NoopRecorder struct{}

func (NoopRecorder) IncItemPublished(string)            {}
func (NoopRecorder) IncInputSkipped(string)             {}
func (NoopRecorder) AddArchiveFiles(int)                {}
func (NoopRecorder) AddBrokenLinks(int)                 {}
func (NoopRecorder) ObserveBuildDuration(time.Duration) {}
func (NoopRecorder) IncBuildOutcome(BuildOutcomeLabel)  {}
