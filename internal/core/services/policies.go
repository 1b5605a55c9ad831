package services

import (
	"time"

	"github.com/comitanigiacomo/garmin-notion-sync/internal/core/retry"
)

type RetryPolicies struct {
	Login retry.Policy
	Steps retry.Policy
	Sleep retry.Policy
}

type RetrySettings struct {
	BaseDelay    time.Duration
	MaxRetries   int
	RequestPause time.Duration
	OnRetry      func(name string, attempt int, delay time.Duration)
}

// NewRetryPolicies builds the three call-site policies from one setting.
// Login gets a single retry, no pause after success and no wait once it
// gives up. Fetches wait out the last backoff before degrading.
func NewRetryPolicies(s RetrySettings) RetryPolicies {
	fetch := retry.Policy{
		MaxRetries:    s.MaxRetries,
		BaseDelay:     s.BaseDelay,
		SuccessDelay:  s.RequestPause,
		WaitAfterLast: true,
		OnRetry:       s.OnRetry,
	}

	return RetryPolicies{
		Login: retry.Policy{
			Name:       "login",
			MaxRetries: 1,
			BaseDelay:  s.BaseDelay,
			OnRetry:    s.OnRetry,
		},
		Steps: fetch.WithName("steps"),
		Sleep: fetch.WithName("sleep"),
	}
}
