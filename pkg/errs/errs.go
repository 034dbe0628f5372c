// Package errs defines the error kinds a recommendation can fail with.
// Callers wrap these with github.com/pkg/errors and test them with errors.Is.
package errs

import "github.com/pkg/errors"

var (
	// ErrInvalidConfig is returned before any search work starts.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrMalformedData marks missing or inconsistent static/user data. Never retried.
	ErrMalformedData = errors.New("malformed data")
	// ErrCannotRecommend means the whole candidate pool cannot form a legal deck.
	ErrCannotRecommend = errors.New("cannot recommend any deck")
)

// Config wraps ErrInvalidConfig with a formatted message.
func Config(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidConfig, format, args...)
}

// Data wraps ErrMalformedData with a formatted message.
func Data(format string, args ...interface{}) error {
	return errors.Wrapf(ErrMalformedData, format, args...)
}

// Kind returns a short label for the error kind, or "internal" when err
// carries none of the sentinels.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidConfig):
		return "config"
	case errors.Is(err, ErrMalformedData):
		return "data"
	case errors.Is(err, ErrCannotRecommend):
		return "exhausted"
	}
	return "internal"
}
