package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Subject is a taught discipline with its own weight in the overall average
type Subject struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	ShortName   string  `json:"shortName,omitempty"`
	Coefficient float64 `json:"coefficient"`
	Color       string  `json:"color,omitempty"`
}

// Grade is one mark on the 0-20 scale. Value and Coefficient are pointers
// because the backend occasionally omits them. Decoding never fails on a
// malformed value, coefficient, quarter or date: the field is left unset so
// the averages skip that mark and the rest of the list survives.
type Grade struct {
	ID          int64    `json:"id"`
	StudentID   int64    `json:"studentId"`
	SubjectID   int64    `json:"subjectId"`
	Value       *float64 `json:"value"`
	Coefficient *float64 `json:"coefficient"`
	Quarter     int      `json:"quarter"`
	Type        string   `json:"type,omitempty"`
	Date        Date     `json:"date"`
	Comment     string   `json:"comment,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler
func (g *Grade) UnmarshalJSON(data []byte) error {
	type plain Grade
	var raw struct {
		plain
		Value       json.RawMessage `json:"value"`
		Coefficient json.RawMessage `json:"coefficient"`
		Quarter     json.RawMessage `json:"quarter"`
		Date        json.RawMessage `json:"date"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*g = Grade(raw.plain)
	g.Value = lenientNumber(raw.Value)
	g.Coefficient = lenientNumber(raw.Coefficient)
	if q := lenientNumber(raw.Quarter); q != nil && *q == math.Trunc(*q) {
		g.Quarter = int(*q)
	}
	if err := g.Date.UnmarshalJSON(raw.Date); err != nil {
		g.Date = Date{}
	}
	return nil
}

// lenientNumber reads a JSON number or a numeric string ("15", "12,5").
// Anything else, including NaN and infinities, yields nil.
func lenientNumber(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		s = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
		if v, err = strconv.ParseFloat(s, 64); err != nil {
			return nil
		}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Quarter is an academic term segment
type Quarter struct {
	Number    int    `json:"number"`
	Label     string `json:"label"`
	StartDate Date   `json:"startDate"`
	EndDate   Date   `json:"endDate"`
}
