package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoFilmURL means the input text contained no recognizable film URL.
	ErrNoFilmURL = errors.New("no film URL found")
	// ErrKviffLinkMissing means a KVIFF.TV page carried no embedded ČSFD link.
	ErrKviffLinkMissing = errors.New("KVIFF.TV page doesn't contain a ČSFD.cz URL")
	// ErrOverviewLinkMissing means a series page had no overview tab to follow.
	ErrOverviewLinkMissing = errors.New("series page has no overview link")
	// ErrYearMissing means the page title carried no parenthesized release year.
	ErrYearMissing = errors.New("release year missing from page title")
	// ErrUserNotAuthorized means the requesting user is not a board member.
	ErrUserNotAuthorized = errors.New("user is not allowed to the board")
	// ErrRemoteService marks a non-2xx response from ČSFD, KVIFF.TV or Trello.
	ErrRemoteService = errors.New("remote service error")
	// ErrConfiguration marks an unusable board or config setup.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap tags err with marker and operation context so callers can classify the
// failure with errors.Is while keeping the original chain intact.
func Wrap(marker error, operation string, err error) error {
	if marker == nil {
		marker = ErrRemoteService
	}
	operation = strings.TrimSpace(operation)
	if err != nil {
		if operation == "" {
			return fmt.Errorf("%w: %w", marker, err)
		}
		return fmt.Errorf("%w: %s: %w", marker, operation, err)
	}
	if operation == "" {
		return marker
	}
	return fmt.Errorf("%w: %s", marker, operation)
}

// Redact replaces every occurrence of the given secret values in text with a
// placeholder. Error text crosses into bot replies and CLI output, so secrets
// must never survive this call.
func Redact(text string, secrets ...string) string {
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		text = strings.ReplaceAll(text, secret, "<secret>")
	}
	return text
}
