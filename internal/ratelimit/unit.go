package ratelimit

import (
	"fmt"
	"strings"
	"time"
)

var namedUnits = map[string]time.Duration{
	"millisecond": time.Millisecond,
	"second":      time.Second,
	"minute":      time.Minute,
	"hour":        time.Hour,
	"day":         24 * time.Hour,
}

// ParseTimeUnit resolves a window unit such as "second", "Minutes" or "250ms".
func ParseTimeUnit(s string) (time.Duration, error) {
	name := strings.ToLower(strings.TrimSpace(s))

	if unit, ok := namedUnits[strings.TrimSuffix(name, "s")]; ok {
		return unit, nil
	}

	unit, err := time.ParseDuration(name)
	if err != nil {
		return 0, fmt.Errorf("%w: unknown time unit %q", ErrInvalidConfig, s)
	}

	if unit.Milliseconds() <= 0 {
		return 0, fmt.Errorf("%w: time unit %q is shorter than 1ms", ErrInvalidConfig, s)
	}

	return unit, nil
}
