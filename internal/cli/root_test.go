package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/bloom/internal/config"
	"github.com/terraincognita07/bloom/internal/db"
	"github.com/terraincognita07/bloom/internal/services"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:         "0",
		Location:     time.UTC,
		DBDriver:     config.DriverSQLite,
		DBPath:       filepath.Join(t.TempDir(), "bloom-cli-test.db"),
		FlowsTimeout: time.Second,
	}
}

func runCommand(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	root := NewRootCmd(cfg, logger)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func seedCycle(t *testing.T, cfg *config.Config, userID string, start time.Time) {
	t.Helper()

	database, err := db.OpenSQLite(cfg.DBPath)
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	repos := db.NewRepositories(database)
	logs := services.NewLogService(repos.Cycles, repos.Symptoms, repos.Nutrition, repos.Fitness, repos.CheckIns, repos.LabResults, time.UTC)
	_, err = logs.StartCycle(context.Background(), userID, services.CycleInput{StartDate: start})
	require.NoError(t, err)
}

func TestPhaseCommandPrintsCycleDay(t *testing.T) {
	cfg := testConfig(t)
	seedCycle(t, cfg, "user-1", time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))

	out, err := runCommand(t, cfg, "phase", "--user", "user-1", "--date", "2026-03-21")
	require.NoError(t, err)

	result := services.PhaseResult{}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.NotNil(t, result.CycleDay)
	assert.Equal(t, 21, *result.CycleDay)
	assert.Equal(t, services.PhaseLuteal, result.Phase)
}

func TestPhaseCommandRejectsMalformedDate(t *testing.T) {
	_, err := runCommand(t, testConfig(t), "phase", "--user", "user-1", "--date", "March 21")
	assert.Error(t, err)
}

func TestScoreCommandWithoutData(t *testing.T) {
	out, err := runCommand(t, testConfig(t), "score", "--user", "nobody")
	require.NoError(t, err)

	breakdown := services.ScoreBreakdown{}
	require.NoError(t, json.Unmarshal([]byte(out), &breakdown))
	assert.Equal(t, 72, breakdown.Score)
	assert.Len(t, breakdown.MissingSignals, 4)
}

func TestSummaryCommandRequiresUser(t *testing.T) {
	_, err := runCommand(t, testConfig(t), "summary")
	assert.Error(t, err)
}

func TestTokenCommand(t *testing.T) {
	cfg := testConfig(t)

	_, err := runCommand(t, cfg, "token", "--user", "user-1")
	assert.ErrorIs(t, err, config.ErrSecretKeyMissing)

	cfg.SecretKey = "0123456789abcdef0123456789abcdef"
	out, err := runCommand(t, cfg, "token", "--user", "user-1", "--ttl", "1h")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(strings.TrimSpace(out), "."), "expected a compact JWT, got %q", out)
}

func TestDigestCommandCountsKnownUsers(t *testing.T) {
	cfg := testConfig(t)
	seedCycle(t, cfg, "user-1", time.Now().AddDate(0, 0, -3))
	seedCycle(t, cfg, "user-2", time.Now().AddDate(0, 0, -10))

	out, err := runCommand(t, cfg, "digest")
	require.NoError(t, err)
	assert.Equal(t, "delivered 2 digest(s)\n", out)
}

func TestReadSecretLineTrimsNewline(t *testing.T) {
	secret, err := readSecretLine(strings.NewReader("  s3cret-value \r\n"))
	require.NoError(t, err)
	assert.Equal(t, "s3cret-value", secret)

	secret, err = readSecretLine(strings.NewReader("no-newline"))
	require.NoError(t, err)
	assert.Equal(t, "no-newline", secret)
}
