package reliability

import (
	"fmt"

	"github.com/gemscan/gemscan-backend/pkg/reliability/breaker"
)

// CircuitOpenError is returned when a source's breaker rejects the call
// before the operation is attempted.
type CircuitOpenError struct {
	Source string
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, breaker.ErrCircuitOpen)
}

// Unwrap lets callers match with errors.Is(err, breaker.ErrCircuitOpen).
func (e *CircuitOpenError) Unwrap() error {
	return breaker.ErrCircuitOpen
}
