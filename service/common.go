package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

type clock func() time.Time

// defaultClock truncates to microseconds, the precision PostgreSQL keeps,
// so a reselected row compares equal to the value that was written.
func defaultClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate accepts RFC 3339 timestamps, HTML datetime-local values and
// plain dates. Values without a zone are read as UTC.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

func parseOptionalDate(raw *string, field string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := ParseDate(*raw)
	if err != nil {
		return nil, Validation(fmt.Sprintf("Data non valida: %s", field))
	}
	return &t, nil
}

// OptionalID is a nullable foreign key as sent by form-driven clients:
// a number, a numeric string, an empty string or null.
type OptionalID struct {
	ID *int64
}

func NewOptionalID(v int64) OptionalID { return OptionalID{ID: &v} }

func (o *OptionalID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		o.ID = nil
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			o.ID = nil
			return nil
		}
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return fmt.Errorf("invalid id %s", data)
	}
	o.ID = &v
	return nil
}

func (o OptionalID) MarshalJSON() ([]byte, error) {
	if o.ID == nil {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(*o.ID, 10)), nil
}

// ensureUserExists accepts a nil id.
func ensureUserExists(tx *gorm.DB, id *int64, msg string) error {
	if id == nil {
		return nil
	}
	var n int64
	if err := tx.Table("users").Where("id = ?", *id).Count(&n).Error; err != nil {
		return Internal("Errore verifica utente", err)
	}
	if n == 0 {
		return Validation(msg)
	}
	return nil
}

// findOr404 loads one row by primary key into dst.
func findOr404(tx *gorm.DB, dst any, id int64, notFoundMsg string) error {
	err := tx.Take(dst, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound(notFoundMsg)
	}
	if err != nil {
		return Internal("Errore lettura database", err)
	}
	return nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func stringOr(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
