package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noor-reader/noor/internal/app/engagement"
	"github.com/noor-reader/noor/internal/content"
	"github.com/noor-reader/noor/internal/domain"
	"github.com/noor-reader/noor/internal/health"
	"github.com/noor-reader/noor/internal/infra/sqlite"
)

const testSecret = "test-secret"

type testEnv struct {
	srv  *Server
	h    http.Handler
	db   *sqlite.DB
	auth *Authenticator
}

func newTestServer(t *testing.T, opts Options) *testEnv {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	eng := engagement.New(db, engagement.Options{
		Content: content.New(),
		Guest:   db.Guest(),
		Clock:   domain.FixedClock{T: time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC)},
	})
	auth := NewAuthenticator(testSecret, "noor", time.Hour)
	srv := NewServer(eng, auth, opts)
	return &testEnv{srv: srv, h: srv.Handler(), db: db, auth: auth}
}

func (e *testEnv) do(t *testing.T, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if user != "" {
		tok, err := e.auth.Issue(user)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	e.h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

// ─── Public Routes ──────────────────────────────────────────────────────────

func TestAPI_Health(t *testing.T) {
	env := newTestServer(t, Options{})
	w := env.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[map[string]any](t, w)["status"])
}

func TestAPI_HealthWithChecker(t *testing.T) {
	db, err := sqlite.Open(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	checker := health.NewChecker(db, nil)
	checker.RunOnce(t.Context())

	env := newTestServer(t, Options{Health: checker})
	w := env.do(t, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Len(t, body["checks"], 1)
}

func TestAPI_BadgesLocalized(t *testing.T) {
	env := newTestServer(t, Options{})

	w := env.do(t, http.MethodGet, "/api/badges?lang=ar", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[struct {
		Badges []domain.BadgeDisplay `json:"badges"`
	}](t, w)
	require.Len(t, body.Badges, engagement.DefaultCatalog().Len())
	assert.Equal(t, "first_ayah", body.Badges[0].ID)
	assert.Equal(t, "First Light", body.Badges[0].Name)
	assert.Equal(t, "النور الأول", body.Badges[0].LocalizedName)
}

func TestAPI_MetricsOptIn(t *testing.T) {
	off := newTestServer(t, Options{})
	assert.NotEqual(t, http.StatusOK, off.do(t, http.MethodGet, "/metrics", "", "").Code)

	on := newTestServer(t, Options{MetricsEnabled: true})
	assert.Equal(t, http.StatusOK, on.do(t, http.MethodGet, "/metrics", "", "").Code)
}

func TestAPI_CORS(t *testing.T) {
	env := newTestServer(t, Options{CORSOrigins: []string{"https://app.example"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/activity", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	w := httptest.NewRecorder()
	env.h.ServeHTTP(w, req)

	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
}

// ─── Auth ───────────────────────────────────────────────────────────────────

func TestAPI_RequiresBearer(t *testing.T) {
	env := newTestServer(t, Options{})

	w := env.do(t, http.MethodGet, "/api/me/streak", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/me/streak", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w = httptest.NewRecorder()
	env.h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticator_RejectsForeignSecret(t *testing.T) {
	other := NewAuthenticator("other-secret", "noor", time.Hour)
	tok, err := other.Issue("u1")
	require.NoError(t, err)

	_, err = NewAuthenticator(testSecret, "noor", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestAuthenticator_RoundTrip(t *testing.T) {
	a := NewAuthenticator(testSecret, "noor", time.Hour)
	tok, err := a.Issue("user-42")
	require.NoError(t, err)
	sub, err := a.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-42", sub)
}

// ─── Activity ───────────────────────────────────────────────────────────────

func TestAPI_RecordActivity(t *testing.T) {
	env := newTestServer(t, Options{})

	w := env.do(t, http.MethodPost, "/api/activity", "u1", `{"kind":"surah","unitId":"1","position":1,"pages":1}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decode[domain.RecordResult](t, w)
	assert.True(t, res.Success)
	assert.False(t, res.Duplicate)
	assert.Equal(t, []string{"first_ayah"}, res.NewAchievements)
	require.NotNil(t, res.Streak)
	assert.Equal(t, 1, res.Streak.CurrentStreak)

	// Same unit, same day: success, no new badges.
	w = env.do(t, http.MethodPost, "/api/activity", "u1", `{"kind":"surah","unitId":"1","position":3,"pages":1}`)
	require.Equal(t, http.StatusOK, w.Code)
	res = decode[domain.RecordResult](t, w)
	assert.True(t, res.Success)
	assert.True(t, res.Duplicate)
	assert.Empty(t, res.NewAchievements)
}

func TestAPI_RecordActivity_Errors(t *testing.T) {
	env := newTestServer(t, Options{})

	tests := []struct {
		name string
		body string
		code int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"negative pages", `{"kind":"surah","unitId":"1","position":1,"pages":-2}`, http.StatusBadRequest},
		{"unknown surah", `{"kind":"surah","unitId":"200","position":1}`, http.StatusNotFound},
		{"unknown kind", `{"kind":"poem","unitId":"1"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/activity", "u1", tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
		})
	}
}

func TestAPI_RateLimited(t *testing.T) {
	env := newTestServer(t, Options{RatePerMinute: 2})

	codes := make([]int, 0, 3)
	for _, unit := range []string{"1", "2", "3"} {
		w := env.do(t, http.MethodPost, "/api/activity", "u1", `{"kind":"surah","unitId":"`+unit+`","position":1}`)
		codes = append(codes, w.Code)
	}
	// Burst is perMinute/2 = 1.
	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusTooManyRequests, codes[2])

	// Other users have their own bucket.
	w := env.do(t, http.MethodPost, "/api/activity", "u2", `{"kind":"surah","unitId":"1","position":1}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

// ─── Reads ──────────────────────────────────────────────────────────────────

func TestAPI_MeEndpoints(t *testing.T) {
	env := newTestServer(t, Options{})
	env.do(t, http.MethodPost, "/api/activity", "u1", `{"kind":"surah","unitId":"1","position":7,"pages":2}`)

	w := env.do(t, http.MethodGet, "/api/me/streak", "u1", "")
	require.Equal(t, http.StatusOK, w.Code)
	streak := decode[domain.Streak](t, w)
	assert.Equal(t, 1, streak.CurrentStreak)
	assert.Equal(t, "2025-07-10", streak.LastActiveDate.String())

	w = env.do(t, http.MethodGet, "/api/me/stats", "u1", "")
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[domain.StatsSnapshot](t, w)
	assert.EqualValues(t, 7, stats.AyahsRead)
	assert.Equal(t, 1, stats.SurahsCompleted)

	w = env.do(t, http.MethodGet, "/api/me/level", "u1", "")
	require.Equal(t, http.StatusOK, w.Code)
	lvl := decode[levelResponse](t, w)
	assert.EqualValues(t, 150, lvl.XP) // first_ayah + first_surah_complete
	assert.Equal(t, 1, lvl.Level)
	assert.EqualValues(t, 850, lvl.XPToNextLevel)

	w = env.do(t, http.MethodGet, "/api/me/progress", "u1", "")
	require.Equal(t, http.StatusOK, w.Code)
	prog := decode[struct {
		Records []domain.ProgressRecord `json:"records"`
	}](t, w)
	require.Len(t, prog.Records, 1)
	assert.True(t, prog.Records[0].IsCompleted)

	w = env.do(t, http.MethodGet, "/api/me/achievements?lang=id", "u1", "")
	require.Equal(t, http.StatusOK, w.Code)
	achs := decode[struct {
		Achievements []engagement.UnlockedBadge `json:"achievements"`
		Unlocked     int                        `json:"unlocked"`
	}](t, w)
	require.Equal(t, 2, achs.Unlocked)
	require.NotNil(t, achs.Achievements[0].Badge)
	assert.Equal(t, "Cahaya Pertama", achs.Achievements[0].Badge.LocalizedName)
}

func TestAPI_CheckAchievementsIdempotent(t *testing.T) {
	env := newTestServer(t, Options{})
	env.do(t, http.MethodPost, "/api/activity", "u1", `{"kind":"surah","unitId":"1","position":1}`)

	w := env.do(t, http.MethodPost, "/api/me/achievements/check", "u1", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string][]string](t, w)
	assert.Empty(t, body["newAchievements"])
}

func TestAPI_GuestImport(t *testing.T) {
	env := newTestServer(t, Options{})
	ctx := t.Context()
	guestDay := domain.Date{Year: 2025, Month: time.July, Day: 9}
	ok, err := env.db.Guest().SwapStreak(ctx, "", domain.Streak{}, domain.Streak{CurrentStreak: 5, LongestStreak: 5, LastActiveDate: guestDay})
	require.NoError(t, err)
	require.True(t, ok)

	w := env.do(t, http.MethodPost, "/api/me/guest-import", "u1", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 5, decode[domain.Streak](t, w).CurrentStreak)

	w = env.do(t, http.MethodPost, "/api/me/guest-import", "u1", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	// The install's guest streak is consumed by the first account.
	w = env.do(t, http.MethodPost, "/api/me/guest-import", "u2", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	w = env.do(t, http.MethodGet, "/api/me/streak", "u2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[domain.Streak](t, w).CurrentStreak)

	// Yesterday's guest run continues today.
	w = env.do(t, http.MethodPost, "/api/activity", "u1", `{"kind":"dhikr","unitId":"morning"}`)
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[domain.RecordResult](t, w)
	require.NotNil(t, res.Streak)
	assert.Equal(t, 6, res.Streak.CurrentStreak)
}
