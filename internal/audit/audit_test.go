package audit

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"projecthub/internal/models"
	"projecthub/internal/testutil"
)

func TestRecordCapturesActorAndClient(t *testing.T) {
	gdb := testutil.DB(t)
	actor := testutil.User(t, gdb, "actor@example.com", nil)
	project := testutil.Project(t, gdb, "P")

	ctx := WithClient(context.Background(), "10.0.0.1", "curl/8")
	err := Record(gdb.WithContext(ctx), Entry{
		ProjectID:  &project.ID,
		Actor:      actor,
		Action:     "assignment.create",
		TargetType: "user",
		TargetID:   actor.ID.String(),
		Metadata:   map[string]any{"role": "Manager"},
	})
	require.NoError(t, err)

	var row models.AuditLog
	require.NoError(t, gdb.First(&row).Error)
	assert.Equal(t, actor.ID, row.ActorID)
	assert.Equal(t, "actor@example.com", row.ActorEmail)
	assert.Equal(t, "10.0.0.1", row.IP)
	assert.Equal(t, "curl/8", row.UserAgent)
	require.NotNil(t, row.ProjectID)
	assert.Equal(t, project.ID, *row.ProjectID)

	var meta map[string]string
	require.NoError(t, json.Unmarshal(row.Metadata, &meta))
	assert.Equal(t, "Manager", meta["role"])
}

func TestRecordRollsBackWithTransaction(t *testing.T) {
	gdb := testutil.DB(t)
	actor := testutil.User(t, gdb, "actor@example.com", nil)

	_ = gdb.Transaction(func(tx *gorm.DB) error {
		require.NoError(t, Record(tx, Entry{Actor: actor, Action: "request.create"}))
		return assert.AnError
	})

	var n int64
	require.NoError(t, gdb.Model(&models.AuditLog{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestListPagesWithCursor(t *testing.T) {
	gdb := testutil.DB(t)
	actor := testutil.User(t, gdb, "actor@example.com", nil)
	project := testutil.Project(t, gdb, "P")
	other := uuid.New()

	for i := 0; i < 5; i++ {
		require.NoError(t, Record(gdb, Entry{ProjectID: &project.ID, Actor: actor, Action: "request.create"}))
	}
	require.NoError(t, Record(gdb, Entry{ProjectID: &other, Actor: actor, Action: "request.create"}))
	require.NoError(t, Record(gdb, Entry{ProjectID: &project.ID, Actor: actor, Action: "assignment.revoke"}))

	ctx := context.Background()
	first, err := List(ctx, gdb, Query{ProjectID: project.ID, Limit: 4})
	require.NoError(t, err)
	require.Len(t, first.Logs, 4)
	require.NotNil(t, first.NextCursor)
	assert.Equal(t, "assignment.revoke", first.Logs[0].Action)

	second, err := List(ctx, gdb, Query{ProjectID: project.ID, Limit: 4, AfterID: *first.NextCursor})
	require.NoError(t, err)
	assert.Len(t, second.Logs, 2)
	assert.Nil(t, second.NextCursor)

	seen := map[int64]bool{}
	for _, l := range append(first.Logs, second.Logs...) {
		assert.False(t, seen[l.ID])
		seen[l.ID] = true
	}

	found, err := List(ctx, gdb, Query{ProjectID: project.ID, Search: "revoke"})
	require.NoError(t, err)
	assert.Len(t, found.Logs, 1)
}
