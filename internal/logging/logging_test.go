package logging

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, time.UTC)

	logger.Error("db_migration_failed", "component", "database")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "db_migration_failed", entry["msg"])
	assert.Equal(t, "database", entry["component"])
	assert.NotEmpty(t, entry["ts"])
	assert.NotContains(t, entry, "time")

	_, err := time.Parse(time.RFC3339Nano, entry["ts"].(string))
	assert.NoError(t, err)
}

func TestLocation(t *testing.T) {
	assert.Equal(t, time.UTC, Location(""))
	assert.Equal(t, time.UTC, Location("Not/AZone"))
	assert.Equal(t, "UTC", Location("UTC").String())
}
