package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupmute/groupmute/internal/biz/domain"
)

func TestParseMuteLog_Defaults(t *testing.T) {
	raw := `[
		{"timestamp":1700000000000,"groupName":"Family","status":"Dismissed","messageText":"hi"},
		{"timestamp":1690000000000},
		{"groupName":"Work","status":"Snoozed"},
		42
	]`

	entries, err := ParseMuteLog(raw)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, domain.MuteLogEntry{
		Timestamp:   1700000000000,
		GroupName:   "Family",
		Status:      domain.MuteStatusDismissed,
		MessageText: "hi",
	}, entries[0])
	assert.Equal(t, domain.MuteLogEntry{
		Timestamp: 1690000000000,
		GroupName: domain.UnknownGroupName,
		Status:    domain.MuteStatusMuted,
	}, entries[1])
}

func TestParseMuteLog_Corrupt(t *testing.T) {
	_, err := ParseMuteLog(`{"not":"array"}`)
	assert.ErrorIs(t, err, ErrCorruptMuteLog)

	_, err = ParseMuteLog(`[{"timestamp":`)
	assert.ErrorIs(t, err, ErrCorruptMuteLog)
}

func TestMuteLogRepo_RoundTrip(t *testing.T) {
	r := NewMuteLogRepo(openTestStore(t))
	ctx := context.Background()

	entries, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	want := []domain.MuteLogEntry{
		{Timestamp: 2, GroupName: "Work", Status: domain.MuteStatusMuted},
		{Timestamp: 1, GroupName: "Family", Status: domain.MuteStatusDismissed, MessageText: "hello"},
	}
	require.NoError(t, r.Store(ctx, want))

	got, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
