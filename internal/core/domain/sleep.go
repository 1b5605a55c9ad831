package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrMalformedSleepData = errors.New("malformed sleep data")
)

const (
	SleepGoalHours = 7.0
	SleepGoalScore = 85
)

// SleepShape records which upstream payload layout a SleepRecord was decoded from.
type SleepShape int

const (
	SleepShapeEmpty SleepShape = iota
	SleepShapeList
	SleepShapeNested
	SleepShapeFlat
)

func (s SleepShape) String() string {
	switch s {
	case SleepShapeList:
		return "list"
	case SleepShapeNested:
		return "nested"
	case SleepShapeFlat:
		return "flat"
	default:
		return "empty"
	}
}

type SleepRecord struct {
	Shape            SleepShape `json:"shape"`
	SleepTimeSeconds float64    `json:"sleep_time_seconds"`
	Score            int        `json:"score"`
}

type SleepMetrics struct {
	DurationHours float64
	Score         int
}

func (r SleepRecord) Metrics() SleepMetrics {
	if r.SleepTimeSeconds <= 0 {
		return SleepMetrics{Score: r.Score}
	}
	return SleepMetrics{DurationHours: r.SleepTimeSeconds / 3600, Score: r.Score}
}

// GoalMet requires both the duration floor and the score floor.
func (m SleepMetrics) GoalMet() bool {
	return m.DurationHours >= SleepGoalHours && m.Score >= SleepGoalScore
}

type flatSleep struct {
	SleepTimeSeconds *float64       `json:"sleepTimeSeconds"`
	SleepScore       json.RawMessage `json:"sleepScore"`
}

type nestedSleep struct {
	SleepTimeSeconds *float64 `json:"sleepTimeSeconds"`
	SleepScores      *struct {
		Overall json.RawMessage `json:"overall"`
	} `json:"sleepScores"`
}

// DecodeSleepRecord normalizes the three payload layouts the fitness service
// returns for a night of sleep: a list of entries (first one wins), an object
// wrapping a dailySleepDTO, or a flat object. Absent fields decode to zero.
// Only undecodable JSON yields an error; the returned record is then empty.
func DecodeSleepRecord(raw []byte) (SleepRecord, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return SleepRecord{}, nil
	}

	switch trimmed[0] {
	case '[':
		var entries []json.RawMessage
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return SleepRecord{}, fmt.Errorf("%w: %v", ErrMalformedSleepData, err)
		}
		if len(entries) == 0 {
			return SleepRecord{}, nil
		}
		var entry flatSleep
		if err := json.Unmarshal(entries[0], &entry); err != nil {
			return SleepRecord{}, fmt.Errorf("%w: first entry: %v", ErrMalformedSleepData, err)
		}
		return SleepRecord{
			Shape:            SleepShapeList,
			SleepTimeSeconds: valueOrZero(entry.SleepTimeSeconds),
			Score:            coerceScore(entry.SleepScore),
		}, nil

	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return SleepRecord{}, fmt.Errorf("%w: %v", ErrMalformedSleepData, err)
		}
		if len(obj) == 0 {
			return SleepRecord{}, nil
		}

		if dto, ok := obj["dailySleepDTO"]; ok {
			return decodeNestedSleep(dto)
		}

		var flat flatSleep
		if err := json.Unmarshal(trimmed, &flat); err != nil {
			return SleepRecord{}, fmt.Errorf("%w: %v", ErrMalformedSleepData, err)
		}
		return SleepRecord{
			Shape:            SleepShapeFlat,
			SleepTimeSeconds: valueOrZero(flat.SleepTimeSeconds),
			Score:            coerceScore(flat.SleepScore),
		}, nil
	}

	return SleepRecord{}, fmt.Errorf("%w: unexpected payload starting with %q", ErrMalformedSleepData, trimmed[0])
}

func decodeNestedSleep(raw json.RawMessage) (SleepRecord, error) {
	record := SleepRecord{Shape: SleepShapeNested}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return record, nil
	}

	var dto nestedSleep
	if err := json.Unmarshal(trimmed, &dto); err != nil {
		return SleepRecord{}, fmt.Errorf("%w: dailySleepDTO: %v", ErrMalformedSleepData, err)
	}

	record.SleepTimeSeconds = valueOrZero(dto.SleepTimeSeconds)
	if dto.SleepScores != nil {
		record.Score = coerceOverallScore(dto.SleepScores.Overall)
	}
	return record, nil
}

// coerceOverallScore accepts either {"value": n} or a bare number/string.
func coerceOverallScore(raw json.RawMessage) int {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapped struct {
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return 0
		}
		return coerceScore(wrapped.Value)
	}
	return coerceScore(trimmed)
}

func coerceScore(raw json.RawMessage) int {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return 0
		}
		s = strings.TrimSpace(s)
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f)
		}
		return 0
	case 'n', 't', 'f', '{', '[':
		return 0
	}

	var f float64
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return 0
	}
	return int(f)
}

func valueOrZero(v *float64) float64 {
	if v == nil || *v < 0 {
		return 0
	}
	return *v
}
