// Package errors provides the classified error primitives used across nbpublish.
//
// A ClassifiedError carries a category (config, notebook, archive, ...), a
// severity and structured context. The CLI adapter maps categories to process
// exit codes so a failed run can be told apart from a skipped input.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryArchive, "write archive failed").
//		Fatal().
//		WithContext("path", zipPath).
//		Build()
package errors
