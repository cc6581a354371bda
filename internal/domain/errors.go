package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSourceUnavailable marks a required source that could not be read.
	// It is fatal to a pipeline run.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrSchemaResolution marks a file whose required columns could not be
	// identified. Callers skip the file and continue.
	ErrSchemaResolution = errors.New("schema resolution failed")

	// ErrStationUnresolved marks a weather file whose name matches no known
	// station. Callers skip the file and continue.
	ErrStationUnresolved = errors.New("station identity unresolved")
)

// SourceUnavailableError names the source and path that could not be loaded.
type SourceUnavailableError struct {
	Source string
	Path   string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s source unavailable: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("%s source unavailable (%s): %v", e.Source, e.Path, e.Err)
}

func (e *SourceUnavailableError) Unwrap() []error {
	return []error{ErrSourceUnavailable, e.Err}
}

// SchemaResolutionError lists the logical columns that no header matched.
type SchemaResolutionError struct {
	Missing []string
}

func (e *SchemaResolutionError) Error() string {
	return fmt.Sprintf("required columns not found: %s", strings.Join(e.Missing, ", "))
}

func (e *SchemaResolutionError) Unwrap() error {
	return ErrSchemaResolution
}
