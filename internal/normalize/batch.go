package normalize

import (
	"fmt"

	"github.com/windoze95/cookiify-api/internal/logger"
	"go.uber.org/zap"
)

// Failure records one record that Batch skipped.
type Failure struct {
	Index int
	Err   error
}

// Batch normalizes every item independently. Items whose conversion fails or
// panics are skipped and logged; the rest are returned in input order.
func Batch[In, Out any](provider string, items []In, convert func(In) (Out, error)) ([]Out, []Failure) {
	out := make([]Out, 0, len(items))
	var failures []Failure
	for i, item := range items {
		v, err := convertOne(item, convert)
		if err != nil {
			failures = append(failures, Failure{Index: i, Err: err})
			logger.Get().Warn("skipping record that failed normalization",
				zap.String("provider", provider),
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}
		out = append(out, v)
	}
	return out, failures
}

func convertOne[In, Out any](item In, convert func(In) (Out, error)) (v Out, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic during normalization: %v", ErrMalformed, r)
		}
	}()
	return convert(item)
}
