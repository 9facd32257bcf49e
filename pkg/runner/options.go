// Package runner evaluates many documents: it discovers document files,
// opens them in one workspace and runs the sheet pipeline over each of
// them on a bounded worker pool.
package runner

import "github.com/yaklabco/textsheets/pkg/config"

// Options controls a multi-document run.
type Options struct {
	// Paths are files or directories to discover documents in, in addition
	// to the documents named by Config. With no paths and no configured
	// documents the working directory is searched.
	Paths []string

	// WorkingDir resolves relative paths. Empty means the process working
	// directory.
	WorkingDir string

	// Extensions are the lowercase extensions, with leading dot, of document
	// files. Defaults to DefaultExtensions().
	Extensions []string

	// IncludeGlobs restrict discovery to matching relative paths.
	IncludeGlobs []string

	// ExcludeGlobs skip matching relative paths and directories.
	ExcludeGlobs []string

	// FollowSymlinks walks symlinked directories.
	FollowSymlinks bool

	// Jobs bounds concurrent document evaluations. 0 or negative means
	// runtime.NumCPU().
	Jobs int

	// Config supplies the documents, sheets and lookup depth.
	Config *config.Config
}

// DefaultExtensions returns the default document file extensions.
func DefaultExtensions() []string {
	return []string{".txt", ".md", ".markdown", ".text"}
}

func (o Options) extensions() []string {
	if len(o.Extensions) == 0 {
		return DefaultExtensions()
	}
	return o.Extensions
}

func (o Options) config() *config.Config {
	if o.Config == nil {
		return config.NewConfig()
	}
	return o.Config
}
