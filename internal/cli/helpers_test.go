package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/aretw0/fsmtrail/pkg/domain"
	"github.com/aretw0/fsmtrail/pkg/history"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrinter_RejectsUnknownFormat(t *testing.T) {
	_, err := NewPrinter(&bytes.Buffer{}, "yaml")
	assert.ErrorContains(t, err, `unknown output format "yaml"`)
}

func TestPrinter_Text(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewPrinter(&buf, "text")
	require.NoError(t, err)

	first := paymentRecord()
	first.From = nil
	first.To = "pending"
	records := []domain.TransitionRecord{first, paymentRecord()}

	require.NoError(t, p.History(records))
	assert.Contains(t, buf.String(), "OCCURRED AT")
	assert.Contains(t, buf.String(), domain.NoState)
	assert.Contains(t, buf.String(), "pay")

	buf.Reset()
	require.NoError(t, p.Replay(history.Replay(records)))
	assert.Contains(t, buf.String(), "initial state: ∅")
	assert.Contains(t, buf.String(), "final state:   paid")

	buf.Reset()
	require.NoError(t, p.Validation(history.Validate(records)))
	assert.Contains(t, buf.String(), "consistent")

	buf.Reset()
	require.NoError(t, p.Validation(history.Validation{Errors: []string{"record 1: broken"}}))
	assert.Contains(t, buf.String(), "found 1 inconsistencies:\n- record 1: broken")

	buf.Reset()
	require.NoError(t, p.Stats(history.Statistics(records)))
	assert.Contains(t, buf.String(), "total transitions: 2")
	assert.Contains(t, buf.String(), "pending→paid")

	buf.Reset()
	require.NoError(t, p.History(nil))
	assert.Equal(t, "no transitions recorded\n", buf.String())

	buf.Reset()
	require.NoError(t, p.Streams([][3]string{{"order", "42", "status"}}))
	assert.Equal(t, "order/42/status\n", buf.String())
}

func TestPrinter_JSON(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewPrinter(&buf, "json")
	require.NoError(t, err)

	require.NoError(t, p.History(nil))
	assert.JSONEq(t, "[]", buf.String())

	buf.Reset()
	require.NoError(t, p.Stats(history.Statistics([]domain.TransitionRecord{paymentRecord()})))
	var stats history.Stats
	require.NoError(t, json.Unmarshal(buf.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalTransitions)
	assert.Equal(t, 1, stats.TransitionFrequency["pending→paid"])

	buf.Reset()
	require.NoError(t, p.Streams([][3]string{{"order", "42", "status"}}))
	assert.JSONEq(t, `[{"entity_type":"order","entity_id":"42","attribute":"status"}]`, buf.String())
}

func TestPrinter_TextGolden(t *testing.T) {
	first := paymentRecord()
	first.From = nil
	first.To = "pending"
	records := []domain.TransitionRecord{first, paymentRecord()}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	var buf bytes.Buffer
	p, err := NewPrinter(&buf, "text")
	require.NoError(t, err)

	require.NoError(t, p.History(records))
	g.Assert(t, "history_text", buf.Bytes())

	buf.Reset()
	require.NoError(t, p.Stats(history.Statistics(records)))
	g.Assert(t, "stats_text", buf.Bytes())
}
