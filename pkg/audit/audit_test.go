package audit_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waldyrious/celo-monorepo/pkg/audit"

	_ "modernc.org/sqlite"
)

func TestLogger_WritesPrefixedJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := audit.NewLoggerWithWriter(&buf)

	err := logger.Record(context.Background(), audit.EventSubsidy, "subsidized_chain", "0xabc", map[string]any{
		"total_fee": 10,
	})
	require.NoError(t, err)

	line := buf.String()
	require.True(t, strings.HasPrefix(line, "AUDIT: "))

	var event audit.Event
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(line), "AUDIT: ")), &event))
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, audit.EventSubsidy, event.Type)
	assert.Equal(t, "subsidized_chain", event.Action)
	assert.Equal(t, "0xabc", event.Account)
	assert.Equal(t, float64(10), event.Metadata["total_fee"])
}

func TestSQLiteStore_AppendAndList(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	store, err := audit.NewSQLiteStore(db)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Record(ctx, audit.EventSubsidy, "subsidized_chain", "0xabc", map[string]any{"units": 5}))
	require.NoError(t, store.Record(ctx, audit.EventPolicy, "limit_changed", "0xadmin", nil))

	events, err := store.List(ctx, "0xabc", 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.EventSubsidy, events[0].Type)
	assert.Equal(t, "subsidized_chain", events[0].Action)
	assert.Equal(t, float64(5), events[0].Metadata["units"])
}
