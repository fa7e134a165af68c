package loader

import "fmt"

// ConfigError reports an unusable loader configuration, such as a data
// directory containing no files of the declared type. It is fatal to
// chain construction and should abort startup.
type ConfigError struct {
	Dir      string
	FileType string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("no %s files found in %s", e.FileType, e.Dir)
}

// ParseError records a single file that failed to parse. One bad file
// does not abort the batch; failures are collected on the LoadResult
// so the caller can report them.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
