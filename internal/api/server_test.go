package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/levelupapp/levelup-server/internal/backup"
	"github.com/levelupapp/levelup-server/internal/cache"
	"github.com/levelupapp/levelup-server/internal/domain"
	"github.com/levelupapp/levelup-server/internal/profile"
	"github.com/levelupapp/levelup-server/internal/service"
	"github.com/levelupapp/levelup-server/internal/store"
	"github.com/levelupapp/levelup-server/internal/store/sqlite"
)

const testAdminKey = "test-admin-key"

// testEnvelope mirrors the response envelope for decoding in tests.
type testEnvelope[T any] struct {
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Success bool   `json:"success"`
}

// testServer wraps the API server for handler testing.
type testServer struct {
	*Server
	api humatest.TestAPI
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "levelup-api-test-*")
	require.NoError(t, err)

	st, err := store.New(filepath.Join(tmpDir, "db"), nil)
	require.NoError(t, err)

	journal, err := sqlite.Open(filepath.Join(tmpDir, "journal.db"), nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = journal.Close()      //nolint:errcheck // Test cleanup
		_ = st.Close()           //nolint:errcheck // Test cleanup
		_ = os.RemoveAll(tmpDir) //nolint:errcheck // Test cleanup
	})

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	curve := domain.DefaultCurve()

	settings := service.NewSettingsService(st, logger)
	progression := service.NewProgressionService(
		st,
		journal,
		cache.NewProgressCache(),
		cache.NewMessageRing(cache.DefaultMessageHistory),
		nil, // no cooldown in tests
		service.NewLoggingRoleSyncer(settings, logger),
		curve,
		logger,
	)
	leaderboard := service.NewLeaderboardService(st, profile.Noop{}, time.Second, curve, logger)

	keyHash, err := bcrypt.GenerateFromPassword([]byte(testAdminKey), bcrypt.MinCost)
	require.NoError(t, err)

	s := NewServer(st, journal, &Services{
		Progression: progression,
		Leaderboard: leaderboard,
		Settings:    settings,
		Backups:     backup.NewService(st, filepath.Join(tmpDir, "backups"), logger),
	}, []string{"*"}, string(keyHash), logger)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.api),
	}
}

// ingest posts one message event and asserts it succeeded.
func (ts *testServer) ingest(t *testing.T, serverID, userID string, xpDelta int64) {
	t.Helper()

	resp := ts.api.Post("/api/v1/events", map[string]any{
		"server_id": serverID,
		"user_id":   userID,
		"xp_delta":  xpDelta,
	})
	require.Equal(t, http.StatusOK, resp.Code, "ingest failed: %s", resp.Body.String())
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[HealthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	assert.True(t, envelope.Success)
	assert.Equal(t, "healthy", envelope.Data.Status)
	assert.NotEmpty(t, envelope.Data.BootID)
	assert.Equal(t, "healthy", envelope.Data.Components["database"].Status)
	assert.Equal(t, "healthy", envelope.Data.Components["journal"].Status)
}

func TestIngestEvent(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/events", map[string]any{
		"server_id":  "srv-1",
		"user_id":    "user-1",
		"channel_id": "chan-1",
		"content":    "hello world",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[EventResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Awarded)
	assert.Equal(t, int64(150), envelope.Data.XP)
	assert.Equal(t, 0, envelope.Data.Level)
}

func TestIngestEvent_MissingFields(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/events", map[string]any{
		"server_id": "srv-1",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestSetUserXP_RequiresAdminKey(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/servers/srv-1/users/user-1/xp", map[string]any{
		"xp": 5000,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Post("/api/v1/servers/srv-1/users/user-1/xp",
		"X-Admin-Key: wrong-key",
		map[string]any{"xp": 5000},
	)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestSetUserXP(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/servers/srv-1/users/user-1/xp",
		"X-Admin-Key: "+testAdminKey,
		map[string]any{"xp": 10000},
	)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[domain.Result]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 2, envelope.Data.Level)
	assert.Equal(t, int64(1000), envelope.Data.XP)
	assert.True(t, envelope.Data.LeveledUp)
}

func TestGetServerUser_DefaultRecord(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/servers/srv-1/users/newcomer")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[domain.Progress]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "newcomer", envelope.Data.UserID)
	assert.Equal(t, int64(0), envelope.Data.XP)
}

func TestServerConfig_PutAndGet(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Put("/api/v1/servers/srv-1/config",
		"X-Admin-Key: "+testAdminKey,
		map[string]any{
			"role_mappings":       map[string]string{"5": "role-silver"},
			"level_up_channel_id": "chan-announce",
		},
	)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/servers/srv-1/config")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[domain.ServerConfig]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "role-silver", envelope.Data.RoleMappings[5])
	assert.Equal(t, "chan-announce", envelope.Data.LevelUpChannelID)
}

func TestServerConfig_GetNotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/servers/srv-none/config")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestBackups_RequireAdminKey(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/admin/backups")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Get("/api/v1/admin/backups")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestBackups_CreateListDelete(t *testing.T) {
	ts := setupTestServer(t)

	ts.ingest(t, "srv-1", "user-1", 0)

	resp := ts.api.Post("/api/v1/admin/backups", "X-Admin-Key: "+testAdminKey)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var created testEnvelope[backup.BackupResult]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	assert.NotEmpty(t, created.Data.ID)
	assert.NotEmpty(t, created.Data.Checksum)
	assert.Positive(t, created.Data.Size)

	resp = ts.api.Get("/api/v1/admin/backups", "X-Admin-Key: "+testAdminKey)
	require.Equal(t, http.StatusOK, resp.Code)

	var listed testEnvelope[struct {
		Backups []backup.Info `json:"backups"`
	}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &listed))
	require.Len(t, listed.Data.Backups, 1)
	assert.Equal(t, created.Data.ID, listed.Data.Backups[0].ID)

	resp = ts.api.Delete("/api/v1/admin/backups/"+created.Data.ID, "X-Admin-Key: "+testAdminKey)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Delete("/api/v1/admin/backups/"+created.Data.ID, "X-Admin-Key: "+testAdminKey)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestServerActivity(t *testing.T) {
	ts := setupTestServer(t)

	ts.ingest(t, "srv-1", "user-1", 0)
	ts.ingest(t, "srv-1", "user-2", 0)

	resp := ts.api.Get("/api/v1/servers/srv-1/activity?limit=10")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[struct {
		Events []*domain.JournalEntry `json:"events"`
	}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Events, 2)
}
