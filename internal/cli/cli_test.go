package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupmute/groupmute/internal/biz/domain"
	"github.com/groupmute/groupmute/internal/data"
)

const nightSchedule = `[{"name":"Night","startHour":22,"startMinute":0,"endHour":8,"endMinute":0,
	"days":[1,2,3,4,5,6,7],"groups":["Family"],"enabled":true}]`

// seedStore writes schedules and one log entry and points the CLI at the database
func seedStore(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "groupmute.db")

	repos, err := data.NewRepositories(dbPath, "", nil)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, repos.Preferences.SaveSchedulesJSON(ctx, nightSchedule))
	require.NoError(t, repos.MuteLogs.Store(ctx, []domain.MuteLogEntry{
		{Timestamp: 1760396400000, GroupName: "Family: hello", Status: domain.MuteStatusDismissed, MessageText: "dinner at 8"},
	}))
	require.NoError(t, repos.Close())

	configPath := filepath.Join(dir, "groupmute.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("blocking:\n  timezone: UTC\n"), 0644))

	t.Setenv("GROUPMUTE_CONFIG", configPath)
	t.Setenv("GROUPMUTE_DB_PATH", dbPath)
	cfgFile = ""
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCheckCommand(t *testing.T) {
	seedStore(t)

	out, err := run(t, "check", "--title", "Family: dinner", "--at", "2026-10-13T23:30:00Z")
	require.NoError(t, err)
	assert.Contains(t, out, "MUTED")
	assert.Contains(t, out, `"Night"`)

	out, err = run(t, "check", "--title", "Family: dinner", "--at", "2026-10-14T12:00:00Z")
	require.NoError(t, err)
	assert.Contains(t, out, "allowed")

	_, err = run(t, "check", "--title", "Family", "--at", "noon")
	assert.Error(t, err)
}

func TestLogsCommand(t *testing.T) {
	seedStore(t)

	out, err := run(t, "logs", "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "STATUS")
	assert.Contains(t, out, "Dismissed")
	assert.Contains(t, out, "Family: hello")
	assert.Contains(t, out, "dinner at 8")
}
