// Package events defines the wire payloads exchanged with the activity service.
package events

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// ActivityRecorded is the message the activity service publishes for every stored activity.
type ActivityRecorded struct {
	ID                Text      `json:"id"`
	UserID            Text      `json:"userId"`
	Type              Text      `json:"type"`
	Duration          Number    `json:"duration"`
	CaloriesBurnt     Number    `json:"caloriesBurnt"`
	StartTime         Timestamp `json:"startTime"`
	AdditionalMetrics Metrics   `json:"additionalMetrics"`
	CreatedAt         Timestamp `json:"createdAt"`
	UpdatedAt         Timestamp `json:"updatedAt"`
}

// Timestamp accepts the date-time encodings the activity service has been seen to emit.
// Unrecognised values decode to the zero time instead of failing the whole message.
type Timestamp struct {
	time.Time
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	switch data[0] {
	case '"':
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
		t.Time = parseTimeString(raw)
	case '[':
		var parts []int
		if err := json.Unmarshal(data, &parts); err != nil {
			return nil
		}
		t.Time = fromParts(parts)
	default:
		t.Time = time.Time{}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func parseTimeString(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return ts.UTC()
	}
	for _, layout := range localLayouts {
		if ts, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// fromParts decodes the [year, month, day, hour, minute, second, nano] array form.
func fromParts(parts []int) time.Time {
	if len(parts) < 3 {
		return time.Time{}
	}
	field := func(i int) int {
		if i < len(parts) {
			return parts[i]
		}
		return 0
	}
	return time.Date(parts[0], time.Month(parts[1]), parts[2], field(3), field(4), field(5), field(6), time.UTC)
}

// Text accepts a JSON string, or the literal of a number or boolean. Anything else decodes to "".
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*t = ""
	if len(data) == 0 {
		return nil
	}
	switch {
	case data[0] == '"':
		var raw string
		if err := json.Unmarshal(data, &raw); err == nil {
			*t = Text(raw)
		}
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("false")):
		*t = Text(data)
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		*t = Text(data)
	}
	return nil
}

// Number accepts integers, fractional numbers (truncated) and numeric strings. Anything else decodes to 0.
type Number int

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*n = 0
	if len(data) == 0 {
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
		raw = strings.TrimSpace(raw)
	}
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*n = clampInt(float64(v))
		return nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		*n = clampInt(math.Trunc(f))
	}
	return nil
}

func clampInt(f float64) Number {
	switch {
	case f > math.MaxInt32:
		return math.MaxInt32
	case f < math.MinInt32:
		return math.MinInt32
	default:
		return Number(f)
	}
}

// Metrics is the free-form metric bag. Only a JSON object is kept; any other value is treated as absent.
type Metrics map[string]any

// UnmarshalJSON implements json.Unmarshaler.
func (m *Metrics) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*m = nil
	if len(data) == 0 || data[0] != '{' {
		return nil
	}
	var bag map[string]any
	if err := json.Unmarshal(data, &bag); err != nil {
		return nil
	}
	*m = bag
	return nil
}
