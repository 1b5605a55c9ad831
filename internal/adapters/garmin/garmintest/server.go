// Package garmintest serves the slice of Garmin Connect the sync job talks to.
package garmintest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/garmin-notion-sync/internal/core/domain"
)

const (
	KindLogin = "login"
	KindSteps = "steps"
	KindSleep = "sleep"
)

type stepsDay struct {
	CalendarDate  string   `json:"calendarDate"`
	TotalSteps    int      `json:"totalSteps"`
	StepGoal      *int     `json:"stepGoal"`
	TotalDistance *float64 `json:"totalDistance"`
}

type Server struct {
	*httptest.Server

	Token       string
	DisplayName string

	steps       map[string]stepsDay
	sleep       map[string]json.RawMessage
	rateLimited map[string]int
	calls       map[string]int

	mu sync.Mutex
}

func NewServer(token string) *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		Token:       token,
		DisplayName: "runner-42",
		steps:       make(map[string]stepsDay),
		sleep:       make(map[string]json.RawMessage),
		rateLimited: make(map[string]int),
		calls:       make(map[string]int),
	}

	router := gin.New()
	router.Use(s.authenticate)
	router.GET("/userprofile-service/socialProfile", s.handleProfile)
	router.GET("/usersummary-service/stats/steps/daily/:start/:end", s.handleSteps)
	router.GET("/wellness-service/wellness/dailySleepData/:name", s.handleSleep)

	s.Server = httptest.NewServer(router)
	return s
}

func (s *Server) SetSteps(date string, steps, goal int, meters float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.steps[date] = stepsDay{CalendarDate: date, TotalSteps: steps, StepGoal: &goal, TotalDistance: &meters}
}

// SetStepsWithoutGoal stores a day whose stepGoal and totalDistance are null.
func (s *Server) SetStepsWithoutGoal(date string, steps int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.steps[date] = stepsDay{CalendarDate: date, TotalSteps: steps}
}

func (s *Server) SetSleep(date, raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sleep[date] = json.RawMessage(raw)
}

// RateLimit makes the next n calls of kind answer 429.
func (s *Server) RateLimit(kind string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rateLimited[kind] = n
}

func (s *Server) Calls(kind string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls[kind]
}

func (s *Server) authenticate(c *gin.Context) {
	if c.GetHeader("Authorization") != "Bearer "+s.Token {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
		return
	}
	c.Next()
}

// admit counts the call and reports whether it should be throttled.
func (s *Server) admit(c *gin.Context, kind string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls[kind]++
	if s.rateLimited[kind] > 0 {
		s.rateLimited[kind]--
		c.String(http.StatusTooManyRequests, "Too Many Requests")
		return false
	}
	return true
}

func (s *Server) handleProfile(c *gin.Context) {
	if !s.admit(c, KindLogin) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"displayName": s.DisplayName})
}

func (s *Server) handleSteps(c *gin.Context) {
	if !s.admit(c, KindSteps) {
		return
	}

	start, errStart := domain.ParseDay(c.Param("start"))
	end, errEnd := domain.ParseDay(c.Param("end"))
	if errStart != nil || errEnd != nil || end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid date range"})
		return
	}

	s.mu.Lock()
	out := make([]stepsDay, 0)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if day, ok := s.steps[d.Format(domain.DateLayout)]; ok {
			out = append(out, day)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CalendarDate < out[j].CalendarDate })
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleSleep(c *gin.Context) {
	if !s.admit(c, KindSleep) {
		return
	}
	if c.Param("name") != s.DisplayName {
		c.JSON(http.StatusNotFound, gin.H{"message": "unknown user"})
		return
	}

	s.mu.Lock()
	raw, ok := s.sleep[c.Query("date")]
	s.mu.Unlock()

	if !ok {
		raw = json.RawMessage(`{}`)
	}
	c.Data(http.StatusOK, "application/json", raw)
}
