package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := parseDate("2025-06-15")
	require.NoError(t, err)
	assert.Equal(t, 2025, d.Year())
	assert.Equal(t, time.June, d.Month())
	assert.Equal(t, 15, d.Day())

	// RFC 3339 timestamps are accepted too
	d, err = parseDate("2025-06-15T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 10, d.Hour())

	for _, s := range []string{"", "15/06/2025", "June 15", "2025-13-40"} {
		_, err := parseDate(s)
		assert.Error(t, err, s)
	}
}

func TestParseEndDate(t *testing.T) {
	d, err := parseEndDate("2025-06-15")
	require.NoError(t, err)
	// extended to the end of the day so the bound is inclusive
	assert.Equal(t, 23, d.Hour())
	assert.Equal(t, 59, d.Minute())
	assert.Equal(t, 59, d.Second())
	assert.Equal(t, 15, d.Day())
}
