// Package build provides the publication pipeline.
//
// A run loads nothing itself: it receives a loaded configuration, wipes the
// output directory, feeds every notebook and markdown document of each
// configured section through its transformer and finally writes the index.
// The CLI build and watch commands both route through Service.
package build
