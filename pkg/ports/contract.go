package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/fsmtrail/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunEventLogContract runs a suite of tests to verify that an EventLog implementation
// adheres to the defined interface contract.
func RunEventLogContract(t *testing.T, log EventLog) {
	ctx := context.Background()
	suffix := time.Now().Format("20060102150405.000000000")
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	record := func(id string, from *string, to string, offset time.Duration) domain.TransitionRecord {
		return domain.TransitionRecord{
			ID:         fmt.Sprintf("%s-%s-%s", id, to, suffix),
			EntityType: "order",
			EntityID:   id,
			Attribute:  "status",
			From:       from,
			To:         to,
			Transition: "to_" + to,
			OccurredAt: base.Add(offset),
		}
	}

	t.Run("Append and Read", func(t *testing.T) {
		id := "append-" + suffix
		first := record(id, nil, "pending", 0)
		first.Context = map[string]any{"reason": "created"}
		first.Metadata = map[string]any{"actor": "system"}

		require.NoError(t, log.Append(ctx, first))
		require.NoError(t, log.Append(ctx, record(id, domain.StateRef("pending"), "processing", time.Second)))

		history, err := log.Read(ctx, "order", id, "status")
		require.NoError(t, err)
		require.Len(t, history, 2)

		assert.Nil(t, history[0].From, "first record keeps an absent from-state")
		assert.Equal(t, "pending", history[0].To)
		assert.Equal(t, "to_pending", history[0].Transition)
		assert.Equal(t, "created", history[0].Context["reason"])
		assert.Equal(t, "system", history[0].Metadata["actor"])
		assert.True(t, first.OccurredAt.Equal(history[0].OccurredAt))

		require.NotNil(t, history[1].From)
		assert.Equal(t, "pending", *history[1].From)
		assert.Equal(t, "processing", history[1].To)
	})

	t.Run("Read Orders By Timestamp", func(t *testing.T) {
		id := "order-" + suffix
		require.NoError(t, log.Append(ctx, record(id, domain.StateRef("b"), "c", 2*time.Second)))
		require.NoError(t, log.Append(ctx, record(id, nil, "a", 0)))
		require.NoError(t, log.Append(ctx, record(id, domain.StateRef("a"), "b", time.Second)))

		history, err := log.Read(ctx, "order", id, "status")
		require.NoError(t, err)
		require.Len(t, history, 3)
		assert.Equal(t, []string{"a", "b", "c"}, []string{history[0].To, history[1].To, history[2].To})
	})

	t.Run("Equal Timestamps Keep Append Order", func(t *testing.T) {
		id := "ties-" + suffix
		for _, to := range []string{"x", "y", "z"} {
			require.NoError(t, log.Append(ctx, record(id, nil, to, 0)))
		}

		history, err := log.Read(ctx, "order", id, "status")
		require.NoError(t, err)
		require.Len(t, history, 3)
		assert.Equal(t, []string{"x", "y", "z"}, []string{history[0].To, history[1].To, history[2].To})
	})

	t.Run("Read Isolates Entity And Attribute", func(t *testing.T) {
		id := "isolated-" + suffix
		require.NoError(t, log.Append(ctx, record(id, nil, "pending", 0)))

		other := record(id, nil, "draft", 0)
		other.Attribute = "review"
		require.NoError(t, log.Append(ctx, other))

		otherType := record(id, nil, "open", 0)
		otherType.EntityType = "ticket"
		require.NoError(t, log.Append(ctx, otherType))

		history, err := log.Read(ctx, "order", id, "status")
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, "pending", history[0].To)
	})

	t.Run("Read Empty History", func(t *testing.T) {
		history, err := log.Read(ctx, "order", "missing-"+suffix, "status")
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("Append Rejects Invalid Record", func(t *testing.T) {
		bad := record("invalid-"+suffix, nil, "", 0)
		assert.ErrorIs(t, log.Append(ctx, bad), domain.ErrInvalidRecord)
	})
}
