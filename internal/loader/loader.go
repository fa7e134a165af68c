package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	gitignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFile is the optional per-directory exclusion list. It uses
// gitignore pattern syntax and is matched against paths relative to
// the data directory.
const IgnoreFile = ".ragignore"

// FileType declares what the loader parses. Exactly one type per
// loader; a directory mixing types needs two loaders.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeHTML FileType = "html"
)

// Options tunes a Loader. Zero values fall back to the documented
// defaults.
type Options struct {
	ChunkSize    int // max chunk length in characters, default 300
	ChunkOverlap int // characters shared between consecutive chunks, default 0
	Workers      int // requested parse workers, default 4, capped at CPU count
}

// LoadResult is the outcome of one LoadDir call. Failures holds the
// files that could not be parsed; their presence does not invalidate
// Documents.
type LoadResult struct {
	Documents []Document
	Failures  []ParseError
}

// Loader reads a directory of files of one declared type, parses them
// in parallel, normalizes their text to 7-bit ASCII and splits the
// result into bounded, overlapping chunks.
type Loader struct {
	fileType FileType
	workers  int
	splitter *Splitter
	log      zerolog.Logger
}

// New creates a Loader for the given file type.
func New(fileType FileType, opts Options, log zerolog.Logger) (*Loader, error) {
	switch fileType {
	case FileTypePDF, FileTypeHTML:
	default:
		return nil, fmt.Errorf("unsupported file type %q (must be pdf or html)", fileType)
	}

	if opts.ChunkSize == 0 {
		opts.ChunkSize = 300
	}
	if opts.Workers == 0 {
		opts.Workers = 4
	}

	return &Loader{
		fileType: fileType,
		workers:  opts.Workers,
		splitter: NewSplitter(opts.ChunkSize, opts.ChunkOverlap),
		log:      log,
	}, nil
}

// LoadDir enumerates matching files in dir, parses them across a
// worker pool and returns the split chunks. A directory with zero
// matching files is a *ConfigError. Per-file parse failures are
// collected on the result; LoadDir only fails outright when every
// file fails.
func (l *Loader) LoadDir(ctx context.Context, dir string) (*LoadResult, error) {
	files, err := l.listFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, &ConfigError{Dir: dir, FileType: string(l.fileType)}
	}

	result := l.loadFiles(ctx, files)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(result.Documents) == 0 && len(result.Failures) > 0 {
		return nil, fmt.Errorf("all %d %s files failed to parse, first error: %w",
			len(result.Failures), l.fileType, result.Failures[0].Err)
	}

	result.Documents = l.splitter.SplitDocuments(result.Documents)

	l.log.Info().
		Str("dir", dir).
		Int("files", len(files)).
		Int("chunks", len(result.Documents)).
		Int("failures", len(result.Failures)).
		Msg("documents loaded")

	return result, nil
}

// listFiles globs for the declared type and applies .ragignore rules
// when the directory carries one.
func (l *Loader) listFiles(dir string) ([]string, error) {
	pattern := filepath.Join(dir, "*."+string(l.fileType))
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}

	matcher, err := gitignore.CompileIgnoreFile(filepath.Join(dir, IgnoreFile))
	if err != nil {
		// Missing ignore file is the normal case.
		return files, nil
	}

	kept := files[:0]
	for _, f := range files {
		rel, err := filepath.Rel(dir, f)
		if err != nil || !matcher.MatchesPath(rel) {
			kept = append(kept, f)
		} else {
			l.log.Debug().Str("file", f).Msg("excluded by .ragignore")
		}
	}
	return kept, nil
}

type fileResult struct {
	path string
	docs []Document
	err  error
}

// loadFiles parses files on a pool of min(CPU count, requested)
// workers. Results are collected as workers finish, so ordering across
// files is not guaranteed; page order within one file is.
func (l *Loader) loadFiles(ctx context.Context, files []string) *LoadResult {
	workers := l.workers
	if n := runtime.NumCPU(); workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan string)
	results := make(chan fileResult)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				docs, err := l.parseFile(path)
				results <- fileResult{path: path, docs: docs, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, f := range files {
			select {
			case jobs <- f:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	result := &LoadResult{}
	for r := range results {
		if r.err != nil {
			l.log.Warn().Str("file", r.path).Err(r.err).Msg("parse failed")
			result.Failures = append(result.Failures, ParseError{Path: r.path, Err: r.err})
			continue
		}
		result.Documents = append(result.Documents, r.docs...)
	}

	sort.Slice(result.Failures, func(i, j int) bool {
		return result.Failures[i].Path < result.Failures[j].Path
	})
	return result
}

func (l *Loader) parseFile(path string) ([]Document, error) {
	switch l.fileType {
	case FileTypePDF:
		return parsePDF(path)
	default:
		return parseHTML(path)
	}
}
