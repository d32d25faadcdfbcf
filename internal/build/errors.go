package build

import "errors"

// Sentinel errors, wrapped with context at the call site.
var (
	ErrNoConfig         = errors.New("nbpublish: configuration required")
	ErrUnsafeOutputDir  = errors.New("nbpublish: output directory must not contain the working directory")
	ErrDiscoveryFailure = errors.New("nbpublish: section discovery failed")
)
