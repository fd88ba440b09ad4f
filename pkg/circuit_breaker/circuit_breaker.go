package circuit_breaker

import (
	"errors"
	"sync"
	"time"
)

type Status uint8

const (
	Closed   Status = 1
	Open     Status = 2
	HalfOpen Status = 3
)

func (s Status) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	}
	return "unknown"
}

type circuitBreaker struct {
	mu    sync.Mutex
	state Status
	// size of the tracked window of calls
	recordLength int
	// how long an open breaker waits before probing again
	timeout         time.Duration
	lastAttemptedAt time.Time
	// failure ratio of the window that opens the breaker
	percentile float64
	// ring buffer, true marks a failed call
	buffer []bool
	pos    int
	// consecutive successes needed in half-open to close again
	recoveryRequests int
	successCount     int
	now              func() time.Time
}

// CircuitBreaker fails fast while a remote dependency keeps failing.
// It never repeats a call.
type CircuitBreaker interface {
	Call(service func() error) error
	State() Status
	Reset()
}

func New(recordLength int, timeout time.Duration, percentile float64, recoveryRequests int) CircuitBreaker {
	return newCircuitBreaker(recordLength, timeout, percentile, recoveryRequests, time.Now)
}

func newCircuitBreaker(recordLength int, timeout time.Duration, percentile float64, recoveryRequests int, now func() time.Time) *circuitBreaker {
	if recordLength <= 0 {
		recordLength = 1
	}
	return &circuitBreaker{
		state:            Closed,
		recordLength:     recordLength,
		timeout:          timeout,
		percentile:       percentile,
		buffer:           make([]bool, recordLength),
		recoveryRequests: recoveryRequests,
		now:              now,
	}
}

var ErrOpenCB = errors.New("service temporarily unavailable")

// Ignore wraps errors that must not count as breaker failures,
// e.g. 4xx answers of a healthy server.
type Ignore struct {
	Err error
}

func (i Ignore) Error() string { return i.Err.Error() }
func (i Ignore) Unwrap() error { return i.Err }

func (cb *circuitBreaker) Call(service func() error) error {
	cb.mu.Lock()
	if cb.state == Open {
		if elapsed := cb.now().Sub(cb.lastAttemptedAt); elapsed > cb.timeout {
			cb.state = HalfOpen
			cb.successCount = 0
		} else {
			cb.mu.Unlock()
			return ErrOpenCB
		}
	}
	cb.mu.Unlock()

	err := service()

	var ignored Ignore
	failed := err != nil && !errors.As(err, &ignored)
	if errors.As(err, &ignored) {
		err = ignored.Err
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.buffer[cb.pos] = failed
	cb.pos = (cb.pos + 1) % cb.recordLength

	if cb.state == HalfOpen {
		if failed {
			cb.successCount = 0
			cb.state = Open
			cb.lastAttemptedAt = cb.now()
		} else {
			cb.successCount++
			if cb.successCount >= cb.recoveryRequests {
				cb.reset()
			}
		}
		return err
	}

	fails := 0
	for _, f := range cb.buffer {
		if f {
			fails++
		}
	}
	if fails > 0 && float64(fails)/float64(cb.recordLength) >= cb.percentile {
		cb.state = Open
		cb.successCount = 0
		cb.lastAttemptedAt = cb.now()
	}

	return err
}

func (cb *circuitBreaker) State() Status {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *circuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.reset()
}

func (cb *circuitBreaker) reset() {
	for i := range cb.buffer {
		cb.buffer[i] = false
	}
	cb.successCount = 0
	cb.pos = 0
	cb.state = Closed
}
