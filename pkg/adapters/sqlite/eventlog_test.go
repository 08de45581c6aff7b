package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/fsmtrail/pkg/domain"
	"github.com/aretw0/fsmtrail/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestLog(t *testing.T) *EventLog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trail.db")
	l, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestSQLiteEventLog_Contract(t *testing.T) {
	ports.RunEventLogContract(t, createTestLog(t))
}

func TestSQLiteEventLog_Pragmas(t *testing.T) {
	l := createTestLog(t)

	var mode string
	require.NoError(t, l.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestSQLiteEventLog_RowsAreAppendOnly(t *testing.T) {
	l := createTestLog(t)
	ctx := context.Background()
	require.NoError(t, l.Append(ctx, domain.TransitionRecord{
		ID: "r1", EntityType: "order", EntityID: "1", Attribute: "status", To: "pending", OccurredAt: time.Now(),
	}))

	_, err := l.db.Exec("UPDATE transitions SET to_state = 'hacked'")
	assert.ErrorContains(t, err, "append-only")

	_, err = l.db.Exec("DELETE FROM transitions")
	assert.ErrorContains(t, err, "append-only")
}

func TestSQLiteEventLog_ReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trail.db")
	ctx := context.Background()

	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.Append(ctx, domain.TransitionRecord{
		ID: "r1", EntityType: "order", EntityID: "1", Attribute: "status", To: "pending", OccurredAt: time.Now(),
	}))
	require.NoError(t, l.Close())

	l, err = Open(path)
	require.NoError(t, err)
	defer l.Close()

	history, err := l.Read(ctx, "order", "1", "status")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "r1", history[0].ID)

	streams, err := l.Streams(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][3]string{{"order", "1", "status"}}, streams)
}
