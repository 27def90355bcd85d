package doctors

import (
	"encoding/json"
	"strings"
)

// DaySchedule is one weekday entry of an availability schedule.
type DaySchedule struct {
	Start       string `json:"start"`
	End         string `json:"end"`
	IsAvailable bool   `json:"isAvailable"`
}

// WeekSchedule maps lowercase weekday names ("monday") to day entries.
type WeekSchedule map[string]DaySchedule

// ParseWeekSchedule decodes a stored availability schedule. It never fails:
// empty or malformed input yields ok=false and callers fall back to the
// default booking window.
func ParseWeekSchedule(raw string) (WeekSchedule, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	var ws WeekSchedule
	if err := json.Unmarshal([]byte(raw), &ws); err != nil || len(ws) == 0 {
		return nil, false
	}
	normalized := make(WeekSchedule, len(ws))
	for day, entry := range ws {
		normalized[strings.ToLower(strings.TrimSpace(day))] = entry
	}
	return normalized, true
}

// Encode renders the schedule back to its stored JSON form.
func (ws WeekSchedule) Encode() (string, error) {
	data, err := json.Marshal(ws)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
