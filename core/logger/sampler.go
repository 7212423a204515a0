package logger

import (
	"strconv"
	"strings"
	"sync"
)

// ratioSampler admits the first pass events out of every window events.
// A zero window disables sampling and every event is admitted.
type ratioSampler struct {
	mu     sync.Mutex
	pass   int
	window int
	seen   int
}

func newRatioSampler(numerator, denominator int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(numerator, denominator)
	return s
}

// Set reconfigures the ratio and restarts the current window.
func (s *ratioSampler) Set(numerator, denominator int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = 0
	if numerator <= 0 || denominator <= 0 {
		s.pass = 0
		s.window = 0
		return
	}
	if numerator > denominator {
		numerator = denominator
	}
	s.pass = numerator
	s.window = denominator
}

// Allow reports whether the event falls inside the admitted share of the window.
func (s *ratioSampler) Allow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.window == 0 {
		return true
	}
	pos := s.seen
	s.seen++
	if s.seen == s.window {
		s.seen = 0
	}
	return pos < s.pass
}

// parseRatioSpec reads "N/M" or a bare "M" (shorthand for 1/M).
// Anything unparseable or non-positive disables sampling.
func parseRatioSpec(spec string) (int, int) {
	spec = strings.TrimSpace(spec)
	if num, den, ok := strings.Cut(spec, "/"); ok {
		n, nerr := strconv.Atoi(strings.TrimSpace(num))
		d, derr := strconv.Atoi(strings.TrimSpace(den))
		if nerr != nil || derr != nil {
			return 0, 0
		}
		return n, d
	}
	if spec == "" {
		return 0, 0
	}
	v, err := strconv.Atoi(spec)
	if err != nil || v <= 0 {
		return 0, 0
	}
	return 1, v
}
