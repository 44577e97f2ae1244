package framer

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	rb "github.com/sushydev/circular_buffer_go"
)

// Config controls how a Framer buffers and splits its input.
type Config struct {
	// Capacity of the ring buffer. A message longer than this can never be
	// completed and is dropped as an overrun.
	Capacity int

	Delimiter byte
	Model     rb.Model

	// ReadSize is the size of each read from the input.
	ReadSize int

	// StripDelimiter removes the delimiter from emitted frames.
	StripDelimiter bool

	// Registerer, when set, receives buffer and framer metrics.
	Registerer prometheus.Registerer
	// MetricsName labels the registered metrics.
	MetricsName string
}

func DefaultConfig() Config {
	return Config{
		Capacity:    4096,
		Delimiter:   '\n',
		Model:       rb.CapacityPlusOne,
		ReadSize:    512,
		MetricsName: "framer",
	}
}

func (c Config) Validate() error {
	if c.Capacity < 1 {
		return errors.Errorf("capacity must be at least 1, got %d", c.Capacity)
	}

	limit := rb.RingBufferLimit
	if c.Model == rb.FullUtilization {
		limit = rb.FullRingBufferLimit
	}
	if c.Capacity > limit {
		return errors.Errorf("capacity %d exceeds the %s limit of %d", c.Capacity, c.Model, limit)
	}

	if c.ReadSize < 1 {
		return errors.Errorf("read size must be at least 1, got %d", c.ReadSize)
	}

	return nil
}

// ParseDelimiter reads a delimiter written as a number ("10", "0x0a"), an
// escape sequence ("\n", "\x00") or a single character (";").
func ParseDelimiter(s string) (byte, error) {
	if s == "" {
		return 0, errors.New("empty delimiter")
	}

	if v, err := strconv.ParseUint(s, 0, 8); err == nil {
		return byte(v), nil
	}

	if strings.HasPrefix(s, `\`) {
		value, _, tail, err := strconv.UnquoteChar(s, '\'')
		if err != nil || tail != "" || value > 0xFF {
			return 0, errors.Errorf("invalid delimiter escape %q", s)
		}
		return byte(value), nil
	}

	if len(s) == 1 {
		return s[0], nil
	}

	return 0, errors.Errorf("delimiter %q is not a single byte", s)
}
