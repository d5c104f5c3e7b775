package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfoWritesKeyValueFields(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, false, "json")

	Info("collected feed", "source", "Digiday", "items", 4)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "collected feed", entry["message"])
	assert.Equal(t, "Digiday", entry["source"])
	assert.EqualValues(t, 4, entry["items"])
}

func TestDebugSuppressedUnlessEnabled(t *testing.T) {
	t.Setenv("DEBUG", "")

	var buf bytes.Buffer
	InitWriter(&buf, false, "json")
	Debug("hidden")
	assert.Empty(t, buf.String())

	InitWriter(&buf, true, "json")
	Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestComponentTagsEntries(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, false, "json")

	log := Component("scraper")
	log.Warn().Msg("fetch failed")

	assert.Contains(t, buf.String(), `"component":"scraper"`)
}
