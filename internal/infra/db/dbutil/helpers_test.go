package dbutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStringOrDash(t *testing.T) {
	assert.Equal(t, "-", StringOrDash(""))
	assert.Equal(t, "-", StringOrDash("  "))
	assert.Equal(t, "text", StringOrDash("text"))
}

func TestNullInt(t *testing.T) {
	assert.False(t, NullInt(nil).Valid)

	v := 82
	n := NullInt(&v)
	assert.Equal(t, sql.NullInt64{Int64: 82, Valid: true}, n)
	assert.Equal(t, 82, *IntPtr(n))
	assert.Nil(t, IntPtr(sql.NullInt64{}))
}

func TestCreatedAt(t *testing.T) {
	at := time.Date(2025, 5, 1, 9, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	assert.Equal(t, at.UTC(), CreatedAt(at))
	assert.WithinDuration(t, time.Now(), CreatedAt(time.Time{}), time.Minute)
}
