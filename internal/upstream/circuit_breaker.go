package upstream

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// ErrCircuitOpen indicates the circuit breaker is open for an endpoint
var ErrCircuitOpen = errors.New("circuit breaker open")

// circuitState represents the state of a circuit breaker
type circuitState int

const (
	stateClosed   circuitState = iota // Normal operation
	stateOpen                         // Upstream failing, calls short-circuited
	stateHalfOpen                     // Testing if upstream recovered
)

// circuitBreaker tracks consecutive failures per endpoint ("posts", "users")
// and stops calling an endpoint that keeps failing
type circuitBreaker struct {
	failures         map[string]int
	lastFailure      map[string]time.Time
	state            map[string]circuitState
	lastStateLog     map[string]time.Time
	failureThreshold int
	openDuration     time.Duration
	mu               sync.Mutex
}

// newCircuitBreaker creates a circuit breaker with default settings
func newCircuitBreaker() *circuitBreaker {
	return &circuitBreaker{
		failureThreshold: 3,                // Open after 3 consecutive failures
		openDuration:     30 * time.Second, // Keep open for 30 seconds
		failures:         make(map[string]int),
		lastFailure:      make(map[string]time.Time),
		state:            make(map[string]circuitState),
		lastStateLog:     make(map[string]time.Time),
	}
}

// canAttempt reports whether a call to endpoint may proceed.
// An open circuit moves to half-open once openDuration has elapsed.
func (cb *circuitBreaker) canAttempt(endpoint string) (bool, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.getState(endpoint) {
	case stateOpen:
		lastFail := cb.lastFailure[endpoint]
		if time.Since(lastFail) > cb.openDuration {
			cb.state[endpoint] = stateHalfOpen
			cb.logStateChange(endpoint, stateHalfOpen)
			return true, nil
		}
		return false, fmt.Errorf(
			"%w for endpoint '%s' (failures: %d, next retry: %s)",
			ErrCircuitOpen,
			endpoint,
			cb.failures[endpoint],
			lastFail.Add(cb.openDuration).Format("15:04:05"),
		)
	default:
		return true, nil
	}
}

// recordSuccess resets failure tracking for endpoint
func (cb *circuitBreaker) recordSuccess(endpoint string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	oldState := cb.getState(endpoint)

	delete(cb.failures, endpoint)
	delete(cb.lastFailure, endpoint)
	cb.state[endpoint] = stateClosed

	if oldState != stateClosed {
		cb.logStateChange(endpoint, stateClosed)
	}
}

// recordFailure records a failed call. A failure while half-open reopens immediately.
func (cb *circuitBreaker) recordFailure(endpoint string, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures[endpoint]++
	cb.lastFailure[endpoint] = time.Now()
	failCount := cb.failures[endpoint]
	oldState := cb.getState(endpoint)

	if failCount >= cb.failureThreshold || oldState == stateHalfOpen {
		cb.state[endpoint] = stateOpen
		if oldState != stateOpen {
			log.Printf(
				"[UPSTREAM-CIRCUIT] Opening circuit for endpoint '%s' after %d consecutive failures. Last error: %v",
				endpoint,
				failCount,
				err,
			)
			cb.lastStateLog[endpoint] = time.Now()
		}
		return
	}

	log.Printf(
		"[UPSTREAM-CIRCUIT] Failure %d/%d for endpoint '%s': %v",
		failCount,
		cb.failureThreshold,
		endpoint,
		err,
	)
}

// getState returns the current state (must be called with lock held)
func (cb *circuitBreaker) getState(endpoint string) circuitState {
	if state, exists := cb.state[endpoint]; exists {
		return state
	}
	return stateClosed
}

// logStateChange logs state transitions, at most once per minute per endpoint
// (must be called with lock held)
func (cb *circuitBreaker) logStateChange(endpoint string, newState circuitState) {
	lastLog, exists := cb.lastStateLog[endpoint]
	if exists && time.Since(lastLog) < time.Minute {
		return
	}

	var stateStr string
	switch newState {
	case stateClosed:
		stateStr = "CLOSED (recovered)"
	case stateOpen:
		stateStr = "OPEN (failing)"
	case stateHalfOpen:
		stateStr = "HALF-OPEN (testing)"
	}

	log.Printf("[UPSTREAM-CIRCUIT] Circuit for endpoint '%s' is now %s", endpoint, stateStr)
	cb.lastStateLog[endpoint] = time.Now()
}
