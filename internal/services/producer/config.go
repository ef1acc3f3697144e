package producer

import (
	"fmt"
	"math"
	"time"

	"github.com/vshulcz/Twintick/internal/domain"
)

// StepMode selects how much a producer adds to its total after each wait.
type StepMode string

const (
	// StepElapsed adds the number of time units just waited.
	StepElapsed StepMode = "elapsed"
	// StepIndependent draws the increment separately from the same range as the wait.
	StepIndependent StepMode = "independent"
)

// Config controls the pacing of a single producer.
type Config struct {
	Unit    time.Duration
	Mode    StepMode
	MinStep uint64
	MaxStep uint64
	Buffer  int
}

// DefaultConfig waits 1..5 seconds between emissions and adds the time waited.
func DefaultConfig() Config {
	return Config{
		Unit:    time.Second,
		Mode:    StepElapsed,
		MinStep: 1,
		MaxStep: 5,
		Buffer:  16,
	}
}

// Validate rejects configs that would produce a non-increasing counter or a busy loop.
// MaxStep*Unit must fit in a time.Duration.
func (c Config) Validate() error {
	switch {
	case c.Unit <= 0:
		return fmt.Errorf("%w: time unit must be positive, got %s", domain.ErrInvalidConfig, c.Unit)
	case c.MinStep == 0:
		return fmt.Errorf("%w: min step must be at least 1", domain.ErrInvalidConfig)
	case c.MaxStep < c.MinStep:
		return fmt.Errorf("%w: max step %d is below min step %d", domain.ErrInvalidConfig, c.MaxStep, c.MinStep)
	case c.MaxStep > c.maxSteps():
		return fmt.Errorf("%w: max step %d overflows a wait of %s units (limit %d)",
			domain.ErrInvalidConfig, c.MaxStep, c.Unit, c.maxSteps())
	case c.Buffer < 0:
		return fmt.Errorf("%w: buffer must not be negative, got %d", domain.ErrInvalidConfig, c.Buffer)
	}
	switch c.Mode {
	case StepElapsed, StepIndependent:
		return nil
	default:
		return fmt.Errorf("%w: unknown step mode %q", domain.ErrInvalidConfig, c.Mode)
	}
}

// maxSteps is the largest step count whose wait still fits in a time.Duration.
func (c Config) maxSteps() uint64 {
	return uint64(math.MaxInt64 / int64(c.Unit))
}
