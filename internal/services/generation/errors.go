package generation

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTimeout     = errors.New("generation timed out")
	ErrNoGenerator = errors.New("no client configured for vendor")
)

// ValidationError lists the model parameters outside the model's ranges.
// It is only returned when strict model configuration is enabled.
type ValidationError struct {
	Model      string
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration for %s: %s", e.Model, strings.Join(e.Violations, "; "))
}
