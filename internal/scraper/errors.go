package scraper

import (
	"errors"
	"fmt"
	"time"
)

// Only the three error types below ever escape the scraper; every other
// failure is absorbed where it happens.

// ConfigurationError means required credentials are absent. It is raised
// before any session is opened.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// AuthenticationError means the login form was still present after
// submission. Detail carries any validation message scraped off the form.
type AuthenticationError struct {
	Detail string
}

func (e *AuthenticationError) Error() string {
	if e.Detail == "" {
		return "authentication failed: login form still present after submission"
	}
	return "authentication failed: " + e.Detail
}

// NavigationTimeoutError means a mandatory page load exceeded its bound.
type NavigationTimeoutError struct {
	URL     string
	Timeout time.Duration
}

func (e *NavigationTimeoutError) Error() string {
	return fmt.Sprintf("navigation to %s timed out after %s", e.URL, e.Timeout)
}

// ErrorKind maps a scrape error to its wire name for the transport layer.
func ErrorKind(err error) string {
	var confErr *ConfigurationError
	var authErr *AuthenticationError
	var navErr *NavigationTimeoutError
	switch {
	case errors.As(err, &confErr):
		return "configuration_error"
	case errors.As(err, &authErr):
		return "authentication_error"
	case errors.As(err, &navErr):
		return "navigation_timeout"
	default:
		return "internal_error"
	}
}
