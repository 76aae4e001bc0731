package llm

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Provider error markers that mean every further request will fail the same way.
var fatalMarkers = []string{
	"API_KEY_INVALID",
	"API key not valid",
	"PERMISSION_DENIED",
	"BLOCKED_BY_CLIENT",
}

// IsFatal reports whether err is an authentication or availability failure.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, m := range fatalMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// IsRateLimited reports whether err looks like a quota/rate-limit rejection.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		strings.Contains(strings.ToLower(msg), "rate limit")
}

var retryHintPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)retry in ([0-9]+(?:\.[0-9]+)?)\s*s`),
	regexp.MustCompile(`(?i)"?retryDelay"?\s*:\s*"([0-9]+(?:\.[0-9]+)?)s"`),
}

// RetryDelay extracts a server-suggested wait from an error message,
// e.g. "Please retry in 7.5s" or `"retryDelay": "30s"`.
func RetryDelay(err error) (time.Duration, bool) {
	if err == nil {
		return 0, false
	}
	msg := err.Error()
	for _, re := range retryHintPatterns {
		m := re.FindStringSubmatch(msg)
		if len(m) < 2 {
			continue
		}
		secs, perr := strconv.ParseFloat(m[1], 64)
		if perr != nil {
			continue
		}
		return time.Duration(secs * float64(time.Second)), true
	}
	return 0, false
}
