package datasource

import (
	"errors"
	"fmt"
)

// ErrNoValidSource is returned when no discovered source can be loaded.
var ErrNoValidSource = errors.New("no valid data source")

// ValidateSource checks that a source can be read and counts its issues.
// The result is recorded on the source itself.
func ValidateSource(source *DataSource) error {
	source.Valid = false
	source.ValidationError = ""

	if source.Size == 0 {
		source.ValidationError = "empty file"
		return fmt.Errorf("%s: empty file", source.Path)
	}

	issues, err := LoadFromSource(*source)
	if err != nil {
		source.ValidationError = err.Error()
		return err
	}
	if len(issues) == 0 {
		source.ValidationError = "no issues"
		return fmt.Errorf("%s: no issues", source.Path)
	}

	source.Valid = true
	source.IssueCount = len(issues)
	return nil
}

// SelectBestSource returns the freshest valid source. Sources are expected in
// DiscoverSources order.
func SelectBestSource(sources []DataSource) (DataSource, error) {
	for _, s := range sources {
		if s.Valid {
			return s, nil
		}
	}
	return DataSource{}, ErrNoValidSource
}
