package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"poker-tracker/internal/model"
	"poker-tracker/internal/repository"
	"poker-tracker/internal/service"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

type testEnv struct {
	router  *gin.Engine
	players *service.MockPlayerStore
	games   *service.MockGameStore
	creds   *service.MockCredentialStore
	token   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		players: new(service.MockPlayerStore),
		games:   new(service.MockGameStore),
		creds:   new(service.MockCredentialStore),
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	env.creds.On("GetByUsername", mock.Anything, "host").
		Return(&model.User{ID: 1, Username: "host", PasswordHash: string(hash)}, nil)
	env.creds.On("GetByUsername", mock.Anything, mock.Anything).
		Return(nil, repository.ErrUserNotFound)

	auth := service.NewAuthService(env.creds, nil, "test-secret", time.Hour)
	env.token, err = auth.Login(context.Background(), "host", "correct horse")
	require.NoError(t, err)

	env.router = NewRouter(Deps{
		Stats:       service.NewStatsService(env.players, env.games),
		Games:       service.NewGameService(env.games, nil, time.Second),
		Players:     service.NewPlayerService(env.players),
		Auth:        auth,
		CORSOrigins: []string{"http://localhost:3000"},
	})
	return env
}

func (e *testEnv) do(method, path string, body any, authed bool) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func date(s string) time.Time {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func scenario() ([]model.Player, []model.LedgerEntry) {
	players := []model.Player{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}
	entries := []model.LedgerEntry{
		{GamePlayer: model.GamePlayer{ID: 1, GameID: 1, PlayerID: 1, BuyIns: []int64{10, 10}, CashOut: 30}, GameDate: date("2024-03-01")},
		{GamePlayer: model.GamePlayer{ID: 2, GameID: 2, PlayerID: 1, BuyIns: []int64{20}, CashOut: 0}, GameDate: date("2024-03-08")},
	}
	return players, entries
}

func TestStats_Unfiltered(t *testing.T) {
	env := newTestEnv(t)
	players, entries := scenario()
	env.players.On("List", mock.Anything).Return(players, nil)
	env.games.On("ListEntries", mock.Anything, model.DateRange{}).Return(entries, nil)

	w := env.do(http.MethodGet, "/api/stats", nil, false)

	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[[]model.PlayerStats](t, w)
	require.Len(t, stats, 2)
	assert.Equal(t, model.PlayerStats{ID: 1, Name: "A", TotalBuyIns: 40, TotalCashOut: 30, NetProfit: -10, BiggestWin: 10}, stats[0])
	assert.Equal(t, model.PlayerStats{ID: 2, Name: "B"}, stats[1])
	assert.Contains(t, w.Body.String(), `"biggestWin":0`)
}

func TestStats_DateWindow(t *testing.T) {
	env := newTestEnv(t)
	players, entries := scenario()
	start, end := date("2024-03-01"), date("2024-03-01")
	env.players.On("List", mock.Anything).Return(players, nil)
	env.games.On("ListEntries", mock.Anything, model.DateRange{Start: &start, End: &end}).Return(entries, nil)

	w := env.do(http.MethodGet, "/api/stats?start_date=2024-03-01&end_date=2024-03-01", nil, false)

	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[[]model.PlayerStats](t, w)
	assert.Equal(t, model.PlayerStats{ID: 1, Name: "A", TotalBuyIns: 20, TotalCashOut: 30, NetProfit: 10, BiggestWin: 10}, stats[0])
}

func TestStats_BadDate(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/stats?start_date=03/01/2024", nil, false)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env.players.AssertNotCalled(t, "List", mock.Anything)
}

func TestGames_ListShape(t *testing.T) {
	env := newTestEnv(t)
	notes := "friday"
	env.games.On("List", mock.Anything).Return([]model.Game{
		{ID: 2, Date: date("2024-03-08"), Notes: &notes},
		{ID: 1, Date: date("2024-03-01")},
	}, nil)
	env.games.On("ListGamePlayers", mock.Anything).Return([]model.GamePlayer{
		{GameID: 1, BuyIns: []int64{10, 10}},
		{GameID: 2, BuyIns: []int64{20}},
	}, nil)

	w := env.do(http.MethodGet, "/api/games", nil, false)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[
		{"id":2,"date":"2024-03-08","notes":"friday","total_buyins":20},
		{"id":1,"date":"2024-03-01","notes":null,"total_buyins":20}
	]`, w.Body.String())
}

func TestGames_GetDetail(t *testing.T) {
	env := newTestEnv(t)
	env.games.On("GetByID", mock.Anything, int64(1)).Return(&model.Game{ID: 1, Date: date("2024-03-01")}, nil)
	env.games.On("EntriesForGame", mock.Anything, int64(1)).Return([]model.LedgerEntry{
		{GamePlayer: model.GamePlayer{ID: 5, GameID: 1, PlayerID: 1, BuyIns: []int64{10, 10}, CashOut: 30}, PlayerName: "A"},
		{GamePlayer: model.GamePlayer{ID: 6, GameID: 1, PlayerID: 2, CashOut: 0}, PlayerName: "B"},
	}, nil)

	w := env.do(http.MethodGet, "/api/games/1", nil, false)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"id":1,"date":"2024-03-01","notes":null,"total_buyins":20,
		"players":[
			{"id":5,"game_id":1,"player_id":1,"player_name":"A","buy_ins":[10,10],"cash_out":30},
			{"id":6,"game_id":1,"player_id":2,"player_name":"B","buy_ins":[],"cash_out":0}
		]
	}`, w.Body.String())
}

func TestGames_GetMissingAndBadID(t *testing.T) {
	env := newTestEnv(t)
	env.games.On("GetByID", mock.Anything, int64(99)).Return(nil, service.ErrGameNotFound)

	w := env.do(http.MethodGet, "/api/games/99", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Game not found", decode[messageResponse](t, w).Message)

	w = env.do(http.MethodGet, "/api/games/abc", nil, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGames_CreateRequiresHost(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]any{"date": "2024-03-01", "players": []any{}}

	w := env.do(http.MethodPost, "/api/games", body, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/games", bytes.NewBufferString(`{}`))
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	env.games.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGames_Create(t *testing.T) {
	env := newTestEnv(t)
	want := []model.GamePlayer{
		{PlayerID: 1, BuyIns: []int64{10, 10}, CashOut: 30},
		{PlayerID: 2, BuyIns: []int64{}, CashOut: 5},
	}
	env.games.On("Create", mock.Anything, date("2024-03-01"), (*string)(nil), want).Return(int64(17), nil)

	w := env.do(http.MethodPost, "/api/games", `{
		"date": "2024-03-01",
		"players": [
			{"playerId": 1, "buyIns": [10, 10], "cashOut": 30},
			{"playerId": 2, "cashOut": 5}
		]
	}`, true)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t, `{"gameId":17}`, w.Body.String())
	env.games.AssertExpectations(t)
}

func TestGames_CreateValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing date", `{"players": []}`},
		{"bad date", `{"date": "2024-13-40", "players": []}`},
		{"players missing", `{"date": "2024-03-01"}`},
		{"players not a list", `{"date": "2024-03-01", "players": "A,B"}`},
		{"negative buy-in", `{"date": "2024-03-01", "players": [{"playerId": 1, "buyIns": [-5], "cashOut": 0}]}`},
		{"negative cash-out", `{"date": "2024-03-01", "players": [{"playerId": 1, "buyIns": [5], "cashOut": -1}]}`},
		{"non-numeric buy-in", `{"date": "2024-03-01", "players": [{"playerId": 1, "buyIns": ["ten"], "cashOut": 0}]}`},
		{"mixed buy-ins", `{"date": "2024-03-01", "players": [{"playerId": 1, "buyIns": [10, "x", 20], "cashOut": 0}]}`},
		{"non-numeric cash-out", `{"date": "2024-03-01", "players": [{"playerId": 1, "buyIns": [5], "cashOut": "lots"}]}`},
		{"buy-in over limit", `{"date": "2024-03-01", "players": [{"playerId": 1, "buyIns": [9223372036854775807, 1], "cashOut": 0}]}`},
		{"cash-out over limit", `{"date": "2024-03-01", "players": [{"playerId": 1, "buyIns": [5], "cashOut": 1000000000001}]}`},
		{"too many buy-ins", fmt.Sprintf(`{"date": "2024-03-01", "players": [{"playerId": 1, "buyIns": [%s], "cashOut": 0}]}`, strings.Repeat("1,", 50)+"1")},
		{"too many players", fmt.Sprintf(`{"date": "2024-03-01", "players": [%s]}`, strings.Repeat(`{"playerId": 1, "cashOut": 0},`, 100)+`{"playerId": 1, "cashOut": 0}`)},
		{"missing player id", `{"date": "2024-03-01", "players": [{"buyIns": [5], "cashOut": 0}]}`},
		{"malformed json", `{"date": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			w := env.do(http.MethodPost, "/api/games", tt.body, true)

			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			env.games.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestGames_CreateUnknownPlayer(t *testing.T) {
	env := newTestEnv(t)
	env.games.On("Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(int64(0), service.ErrUnknownPlayer)

	w := env.do(http.MethodPost, "/api/games", `{"date":"2024-03-01","players":[{"playerId":404,"buyIns":[1],"cashOut":0}]}`, true)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGames_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	env.games.On("Replace", mock.Anything, int64(3), date("2024-03-02"), mock.Anything, mock.Anything).Return(nil)
	env.games.On("Delete", mock.Anything, int64(3)).Return(nil)
	env.games.On("Delete", mock.Anything, int64(4)).Return(service.ErrGameNotFound)

	w := env.do(http.MethodPut, "/api/games/3", `{"date":"2024-03-02","players":[]}`, true)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodDelete, "/api/games/3", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodDelete, "/api/games/4", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlayers_CRUD(t *testing.T) {
	env := newTestEnv(t)
	env.players.On("List", mock.Anything).Return([]model.Player{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}, nil)
	env.players.On("Create", mock.Anything, "Carol").Return(&model.Player{ID: 3, Name: "Carol"}, nil)
	env.players.On("UpdateName", mock.Anything, int64(3), "Caroline").Return(&model.Player{ID: 3, Name: "Caroline"}, nil)

	w := env.do(http.MethodGet, "/api/players", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Player](t, w), 2)

	w = env.do(http.MethodPost, "/api/players", map[string]string{"name": "Carol"}, true)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Carol", decode[model.Player](t, w).Name)

	w = env.do(http.MethodPut, "/api/players/3", map[string]string{"name": "Caroline"}, true)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodPost, "/api/players", map[string]string{"name": "   "}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/api/players", `{}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlayers_DeleteWithHistoryIsForbidden(t *testing.T) {
	env := newTestEnv(t)
	env.players.On("HasLedgerEntries", mock.Anything, int64(1)).Return(true, nil)

	w := env.do(http.MethodDelete, "/api/players/1", nil, true)

	assert.Equal(t, http.StatusForbidden, w.Code)
	env.players.AssertNotCalled(t, "Delete", mock.Anything, int64(1))
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "host", "password": "correct horse"}, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[loginResponse](t, w).Token)

	w = env.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "host", "password": "nope"}, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decode[messageResponse](t, w).Message)

	w = env.do(http.MethodPost, "/api/auth/login", `{"username":"host"}`, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStoreFailureIsOpaque(t *testing.T) {
	env := newTestEnv(t)
	env.players.On("List", mock.Anything).Return(nil, errors.New("dial tcp 10.0.0.5:5432: connection refused"))

	w := env.do(http.MethodGet, "/api/players", nil, false)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, internalErrorMessage, decode[messageResponse](t, w).Message)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
}

func TestHealth(t *testing.T) {
	healthy := NewRouter(Deps{Health: func(context.Context) error { return nil }})
	w := httptest.NewRecorder()
	healthy.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	down := NewRouter(Deps{Health: func(context.Context) error { return errors.New("down") }})
	w = httptest.NewRecorder()
	down.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMiddleware_RequestIDAndCORS(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/games", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestMiddleware_Recovery(t *testing.T) {
	env := newTestEnv(t)
	env.router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, internalErrorMessage, decode[messageResponse](t, w).Message)
}
