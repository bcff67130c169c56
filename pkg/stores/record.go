package stores

import (
	"errors"

	"github.com/openfroyo/lzconfig/pkg/config"
)

// FromLoadResult converts a load attempt into a Validation ready to record.
// Accepted loads carry a YAML snapshot of the resulting configuration.
func FromLoadResult(result *config.LoadResult) (*Validation, error) {
	if result == nil {
		return nil, errors.New("nil load result")
	}

	v := &Validation{
		ID:         result.ID,
		Source:     result.Source,
		Status:     ValidationStatusRejected,
		State:      string(result.State),
		Issues:     result.Issues,
		DurationMS: result.Duration.Milliseconds(),
		CreatedAt:  result.LoadedAt.UTC(),
	}

	if result.Err != nil {
		kind := string(config.KindOf(result.Err))
		v.ErrorKind = &kind
	}

	if result.Valid() && result.Config != nil {
		v.Status = ValidationStatusValid
		home := result.Config.HomeRegion
		v.HomeRegion = &home

		out, err := result.Config.YAML()
		if err != nil {
			return nil, err
		}
		snapshot := string(out)
		v.Snapshot = &snapshot
	}

	return v, nil
}
