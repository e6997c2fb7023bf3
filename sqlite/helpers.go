package sqlite

import (
	"database/sql"
	"fmt"
	"time"
)

// parseRFC3339 parses an RFC3339 formatted timestamp string.
func parseRFC3339(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}

// parseNullableTime converts a nullable RFC3339 column to *time.Time.
func parseNullableTime(value sql.NullString, fieldName string) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	t, err := parseRFC3339(value.String, fieldName)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// formatNullableTime converts *time.Time to a nullable RFC3339 column value.
func formatNullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
