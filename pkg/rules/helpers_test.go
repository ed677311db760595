package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func unixMsUTC(t *testing.T, value string) int64 {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	assert.NoError(t, err)
	return parsed.UnixMilli()
}
