// Package archive bundles data files referenced by notebooks and documents into zip files.
package archive

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/zip"
	"golang.org/x/text/unicode/norm"

	ferrors "git.home.luguber.info/inful/nbpublish/internal/foundation/errors"
	"git.home.luguber.info/inful/nbpublish/internal/logfields"
)

// Result summarizes a written archive.
type Result struct {
	Path    string   // Destination archive path
	Entries []string // Archive-internal names in the order they were written
	Missing []string // Patterns that matched no files
}

// Files returns the number of files added to the archive.
func (r *Result) Files() int {
	return len(r.Entries)
}

// Build collects every regular file matching patterns (resolved against baseDir,
// with ** matching any number of directories) into a new zip at dest.
//
// Entry names are relative to baseDir; a match outside baseDir keeps its full
// path instead. A file matched by several patterns is written once. Patterns
// that match nothing are logged and reported in Result.Missing.
func Build(patterns []string, dest, baseDir string) (*Result, error) {
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryArchive, "resolve archive base directory").
			Fatal().WithContext("base", baseDir).Build()
	}

	// #nosec G304 -- dest is derived from the configured output directory
	f, err := os.Create(dest)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryArchive, "create archive").
			Fatal().WithContext("path", dest).Build()
	}
	defer func() { _ = f.Close() }()

	zw := zip.NewWriter(f)
	result := &Result{Path: dest}
	added := make(map[string]struct{})
	names := make(map[string]struct{})

	for _, pattern := range patterns {
		full := pattern
		if !filepath.IsAbs(pattern) {
			full = filepath.Join(baseDir, pattern)
		}
		matches, err := doublestar.FilepathGlob(full, doublestar.WithFilesOnly())
		if err != nil {
			_ = zw.Close()
			return nil, ferrors.WrapError(err, ferrors.CategoryArchive, "invalid data file pattern").
				Fatal().WithContext("pattern", pattern).Build()
		}
		if len(matches) == 0 {
			slog.Warn("No files match pattern", logfields.Pattern(pattern), logfields.Path(baseDir))
			result.Missing = append(result.Missing, pattern)
			continue
		}

		for _, match := range matches {
			abs, err := filepath.Abs(match)
			if err != nil {
				_ = zw.Close()
				return nil, ferrors.WrapError(err, ferrors.CategoryArchive, "resolve data file").
					Fatal().WithContext("path", match).Build()
			}
			if _, seen := added[abs]; seen {
				continue
			}
			name := EntryName(absBase, abs, match)
			if _, clash := names[name]; clash {
				slog.Warn("Skipping data file with duplicate archive name", logfields.Path(match), slog.String("entry", name))
				continue
			}
			if err := addFile(zw, match, name); err != nil {
				_ = zw.Close()
				return nil, ferrors.WrapError(err, ferrors.CategoryArchive, "add file to archive").
					Fatal().WithContext("path", match).WithContext("archive", dest).Build()
			}
			added[abs] = struct{}{}
			names[name] = struct{}{}
			result.Entries = append(result.Entries, name)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryArchive, "finalize archive").
			Fatal().WithContext("path", dest).Build()
	}
	slog.Info("Created data archive", logfields.Path(filepath.Base(dest)), logfields.Count(result.Files()))
	return result, nil
}

// EntryName computes the archive-internal name for a matched file. absBase and
// absPath must be absolute; match is the path as produced by globbing and is
// used when the file lies outside absBase.
func EntryName(absBase, absPath, match string) string {
	name := match
	if rel, err := filepath.Rel(absBase, absPath); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		name = rel
	} else {
		name = strings.TrimPrefix(filepath.Clean(name), filepath.VolumeName(name))
	}
	name = strings.TrimLeft(filepath.ToSlash(name), "/")
	return norm.NFC.String(name)
}

func addFile(zw *zip.Writer, path, name string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("zip header: %w", err)
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	// #nosec G304 -- path comes from a glob rooted at the document directory
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()
	_, err = io.Copy(w, src)
	return err
}
