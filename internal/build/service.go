package build

import (
	"time"

	"git.home.luguber.info/inful/nbpublish/internal/config"
	"git.home.luguber.info/inful/nbpublish/internal/publish"
)

// BuildRequest contains all inputs required to publish a workshop.
type BuildRequest struct {
	// Config is the loaded configuration for this run.
	Config *config.Config

	// WorkDir resolves relative section folders, output and option paths.
	// Empty means the process working directory.
	WorkDir string

	// OutputDir overrides Config.OutputDir when set.
	OutputDir string

	Options BuildOptions
}

// BuildOptions toggles the optional outputs of a run.
type BuildOptions struct {
	// ManifestPath, when set, receives a JSON build manifest.
	ManifestPath string

	// MetricsPath, when set, receives run metrics in Prometheus text format.
	MetricsPath string

	// SkipLinkCheck disables verification of relative links in generated pages.
	SkipLinkCheck bool
}

// BuildResult contains the outcome of a run.
type BuildResult struct {
	Status BuildStatus

	// OutputPath is the absolute output directory.
	OutputPath string

	// IndexPath is the written index page, empty when no items were published.
	IndexPath string

	// Items are the published items in discovery order.
	Items []*publish.Item

	// InputsSkipped counts inputs and folders that produced no item.
	InputsSkipped int

	// BrokenLinks counts dangling relative links found in generated pages.
	BrokenLinks int

	Duration  time.Duration
	StartTime time.Time
	EndTime   time.Time
}

// BuildStatus represents the outcome of a run.
type BuildStatus string

const (
	// BuildStatusSuccess indicates at least one item was published.
	BuildStatusSuccess BuildStatus = "success"

	// BuildStatusEmpty indicates the run finished without publishing anything.
	BuildStatusEmpty BuildStatus = "empty"

	// BuildStatusFailed indicates the run aborted on a fatal error.
	BuildStatusFailed BuildStatus = "failed"

	// BuildStatusCancelled indicates the context was cancelled mid-run.
	BuildStatusCancelled BuildStatus = "cancelled"
)

// IsSuccess returns true if the run completed without error.
func (s BuildStatus) IsSuccess() bool {
	return s == BuildStatusSuccess || s == BuildStatusEmpty
}
