// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/papercrawl/pkg/types"
)

func TestNewDefaults(t *testing.T) {
	l, err := New(types.LogConfig{})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, l.Formatter)
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithOutput(types.LogConfig{Level: "debug", Format: "json"}, &buf)
	require.NoError(t, err)

	l.WithField("id", "2403.00001").Debug("skipped")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "skipped", entry["msg"])
	assert.Equal(t, "2403.00001", entry["id"])
	assert.Equal(t, "debug", entry["level"])
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(types.LogConfig{Level: "loud"})
	assert.Error(t, err)

	_, err = New(types.LogConfig{Format: "xml"})
	assert.Error(t, err)
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("nobody hears this")
}
