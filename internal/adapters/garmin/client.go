package garmin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/comitanigiacomo/garmin-notion-sync/internal/core/domain"
)

const (
	DefaultBaseURL = "https://connectapi.garmin.com"

	profilePath = "/userprofile-service/socialProfile"
	stepsPath   = "/usersummary-service/stats/steps/daily/%s/%s"
	sleepPath   = "/wellness-service/wellness/dailySleepData/%s"

	maxErrorBody = 1 << 12
)

var ErrTokenExpired = errors.New("garmin token expired")

var _ domain.FitnessClient = (*Client)(nil)

// StatusError is a non-2xx answer from Garmin Connect. Its text always
// carries the numeric status and reason phrase.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("garmin: %s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *StatusError) Is(target error) bool {
	return target == domain.ErrRateLimited && e.StatusCode == http.StatusTooManyRequests
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	now     func() time.Time
	logger  *log.Logger

	displayName string
	mu          sync.RWMutex
}

func NewClient(baseURL, token string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		now:     time.Now,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login validates the bearer token and resolves the display name the sleep
// endpoint is keyed by.
func (c *Client) Login(ctx context.Context) error {
	if c.token == "" {
		return domain.ErrMissingAuthToken
	}
	if err := c.checkExpiry(); err != nil {
		return err
	}

	var profile struct {
		DisplayName string `json:"displayName"`
	}
	if err := c.getJSON(ctx, profilePath, nil, &profile); err != nil {
		return err
	}
	if profile.DisplayName == "" {
		return errors.New("garmin: profile has no displayName")
	}

	c.mu.Lock()
	c.displayName = profile.DisplayName
	c.mu.Unlock()
	return nil
}

func (c *Client) DisplayName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.displayName
}

// checkExpiry rejects a JWT whose exp has passed. Opaque tokens are left for
// the server to judge.
func (c *Client) checkExpiry() error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.token, claims); err != nil {
		c.logger.Printf("[GARMIN] Token is not a JWT, skipping local expiry check")
		return nil
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	if !exp.Time.After(c.now()) {
		return fmt.Errorf("%w at %s", ErrTokenExpired, exp.Time.UTC().Format(time.RFC3339))
	}
	return nil
}

type stepsEntry struct {
	CalendarDate  string   `json:"calendarDate"`
	TotalSteps    *float64 `json:"totalSteps"`
	StepGoal      *float64 `json:"stepGoal"`
	TotalDistance *float64 `json:"totalDistance"`
}

func (c *Client) GetDailySteps(ctx context.Context, start, end time.Time) ([]domain.DailyStepRecord, error) {
	path := fmt.Sprintf(stepsPath, start.Format(domain.DateLayout), end.Format(domain.DateLayout))

	var entries []stepsEntry
	if err := c.getJSON(ctx, path, nil, &entries); err != nil {
		return nil, err
	}

	records := make([]domain.DailyStepRecord, 0, len(entries))
	for _, e := range entries {
		date, err := domain.ParseDay(e.CalendarDate)
		if err != nil {
			return nil, fmt.Errorf("garmin: steps entry date %q: %w", e.CalendarDate, err)
		}

		record := domain.DailyStepRecord{
			Date:     date,
			StepGoal: domain.DefaultStepGoal,
		}
		if e.TotalSteps != nil {
			record.TotalSteps = int(*e.TotalSteps)
		}
		if e.StepGoal != nil {
			record.StepGoal = int(*e.StepGoal)
		}
		if e.TotalDistance != nil {
			record.TotalDistanceMeters = *e.TotalDistance
		}
		records = append(records, record)
	}
	return records, nil
}

func (c *Client) GetSleepData(ctx context.Context, date time.Time) (domain.SleepRecord, error) {
	name := c.DisplayName()
	if name == "" {
		return domain.SleepRecord{}, domain.ErrNotLoggedIn
	}

	query := url.Values{}
	query.Set("date", date.Format(domain.DateLayout))
	query.Set("nonSleepBufferMinutes", "60")

	body, err := c.get(ctx, fmt.Sprintf(sleepPath, url.PathEscape(name)), query)
	if err != nil {
		return domain.SleepRecord{}, err
	}
	return domain.DecodeSleepRecord(body)
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dst any) error {
	body, err := c.get(ctx, path, query)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("garmin: decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("NK", "NT")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("garmin: %s %s: %w", req.Method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			Method:     req.Method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	return io.ReadAll(resp.Body)
}
