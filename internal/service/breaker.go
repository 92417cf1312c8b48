package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/CinePrep/cineprep/internal/domain"
	"github.com/CinePrep/cineprep/pkg/logger"
	"github.com/CinePrep/cineprep/pkg/metrics"
)

// BreakerSettings tunes the circuit breakers guarding upstream calls.
type BreakerSettings struct {
	// MaxRequests allowed while half-open.
	MaxRequests uint32
	// Interval resets the closed-state counts.
	Interval time.Duration
	// Timeout is how long the breaker stays open.
	Timeout time.Duration
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:         2,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

func newBreaker[T any](name string, settings BreakerSettings, m *metrics.Metrics, log logger.Logger) *gobreaker.CircuitBreaker[T] {
	m.BreakerRegistered(name)

	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if log != nil {
				log.WithFields(map[string]interface{}{
					"breaker": name,
					"from":    stateToString(from),
					"to":      stateToString(to),
				}).Warn("Circuit breaker state transition")
			}
			m.BreakerStateChanged(name, stateToString(from), stateToString(to), stateToFloat(to))
		},
		IsSuccessful: breakerSuccessful,
		IsExcluded:   breakerExcluded,
	})
}

// breakerSuccessful counts upstream 4xx responses other than 408 and 429 as
// successes.
func breakerSuccessful(err error) bool {
	if err == nil {
		return true
	}
	var upstream *domain.ErrUpstream
	return errors.As(err, &upstream) &&
		upstream.StatusCode >= 400 && upstream.StatusCode < 500 &&
		upstream.StatusCode != http.StatusTooManyRequests &&
		upstream.StatusCode != http.StatusRequestTimeout
}

// breakerExcluded leaves calls abandoned by their caller out of the counts.
func breakerExcluded(err error) bool {
	return errors.Is(err, context.Canceled)
}

// breakerRejected reports whether err comes from an open or saturated breaker.
func breakerRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
