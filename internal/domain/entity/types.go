package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// JSON type for GORM JSONB support
type JSON map[string]interface{}

// Value returns json value, implement driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan scan value into Jsonb, implements sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, err := scanBytes(value)
	if err != nil {
		return err
	}

	result := map[string]interface{}{}
	err = json.Unmarshal(bytes, &result)
	*j = JSON(result)
	return err
}

// StringList is a []string stored as a JSONB array.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	bytes, err := scanBytes(value)
	if err != nil {
		return err
	}
	var out []string
	if err := json.Unmarshal(bytes, &out); err != nil {
		return err
	}
	*l = out
	return nil
}

// StringMap is a map[string]string stored as a JSONB object.
type StringMap map[string]string

func (m StringMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(map[string]string(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *StringMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	bytes, err := scanBytes(value)
	if err != nil {
		return err
	}
	out := map[string]string{}
	if err := json.Unmarshal(bytes, &out); err != nil {
		return err
	}
	*m = out
	return nil
}

// Weekdays is a set of days of the week stored as a comma separated list of
// time.Weekday numbers ("1,3" = Monday, Wednesday).
type Weekdays []time.Weekday

func (w Weekdays) Contains(day time.Weekday) bool {
	for _, d := range w {
		if d == day {
			return true
		}
	}
	return false
}

func (w Weekdays) String() string {
	sorted := append(Weekdays(nil), w...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	parts := make([]string, 0, len(sorted))
	for i, d := range sorted {
		if i > 0 && sorted[i-1] == d {
			continue
		}
		parts = append(parts, strconv.Itoa(int(d)))
	}
	return strings.Join(parts, ",")
}

func (w Weekdays) Value() (driver.Value, error) {
	return w.String(), nil
}

func (w *Weekdays) Scan(value interface{}) error {
	if value == nil {
		*w = nil
		return nil
	}
	bytes, err := scanBytes(value)
	if err != nil {
		return err
	}
	parsed, err := ParseWeekdays(string(bytes))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// ParseWeekdays parses "1,3,5" into a Weekdays set.
func ParseWeekdays(raw string) (Weekdays, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Weekdays{}, nil
	}
	var days Weekdays
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 6 {
			return nil, fmt.Errorf("invalid weekday %q", part)
		}
		days = append(days, time.Weekday(n))
	}
	return days, nil
}

func scanBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}
}
