package mysql

import (
    "database/sql"
    "strings"
    "time"
)

// nullString maps "" to NULL so optional TEXT columns stay NULL until set
func nullString(s string) sql.NullString {
    if strings.TrimSpace(s) == "" {
        return sql.NullString{}
    }
    return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
    if t == nil || t.IsZero() {
        return sql.NullTime{}
    }
    return sql.NullTime{Time: *t, Valid: true}
}
