package calendar

import (
	"errors"
	"strings"

	"google.golang.org/api/googleapi"
)

// rateLimitVocabulary lists the message fragments the provider uses for
// quota and rate-limit failures. Matching is case-insensitive.
var rateLimitVocabulary = []string{
	"rate limit",
	"ratelimitexceeded",
	"userratelimitexceeded",
	"quota exceeded",
	"quotaexceeded",
	"too many requests",
	"backenderror",
}

// IsTransient reports whether the error is a retryable provider failure:
// rate limiting, quota exhaustion, or a transient server-side error.
// Everything else is treated as permanent and must not be retried.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case 429, 500, 503:
			return true
		case 403:
			// 403 is both "forbidden" and "rate limited"; only the
			// rate-limit vocabulary makes it retryable.
			return matchesRateLimitVocabulary(gerr.Message) || matchesReasons(gerr)
		}
		return false
	}

	return matchesRateLimitVocabulary(err.Error())
}

// IsNotFound reports whether the error means the resource no longer exists.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == 404 || gerr.Code == 410
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}

func matchesRateLimitVocabulary(msg string) bool {
	msg = strings.ToLower(msg)
	for _, v := range rateLimitVocabulary {
		if strings.Contains(msg, v) {
			return true
		}
	}
	return false
}

func matchesReasons(gerr *googleapi.Error) bool {
	for _, item := range gerr.Errors {
		if matchesRateLimitVocabulary(item.Reason) {
			return true
		}
	}
	return false
}
