package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/robalobadob/hangman/apps/go-server/internal/config"
	"github.com/robalobadob/hangman/apps/go-server/internal/puzzle"
	"github.com/robalobadob/hangman/apps/go-server/internal/session"
	"github.com/robalobadob/hangman/apps/go-server/internal/storage"
	"github.com/robalobadob/hangman/apps/go-server/internal/store"
)

// elephantGen always serves ELEPHANT and never prefetches.
type elephantGen struct{}

func (elephantGen) GenerateOne(context.Context, string, puzzle.Difficulty, bool, []string) (puzzle.Puzzle, error) {
	return puzzle.Puzzle{Word: "ELEPHANT", Hints: []string{"trunk", "grey", "big", "Africa"}}, nil
}

func (elephantGen) GenerateMany(context.Context, string, puzzle.Difficulty, []string, int) []puzzle.Puzzle {
	return nil
}

type testEnv struct {
	ts  *httptest.Server
	db  *storage.DB
	reg *store.Registry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	cfg := &config.Config{
		AppEnv:         "test",
		ClientOrigin:   "http://localhost:5173",
		RequestTimeout: 5 * time.Second,
		Auth: config.AuthConfig{
			JWTSecret:  "test-secret",
			ExpireDays: 1,
			CookieName: "hangman_token",
		},
	}
	reg := store.NewRegistry(SessionFactory(elephantGen{}, db, session.Options{
		Draw: func() int { return session.MaxBossInterval },
	}))
	ts := httptest.NewServer(New(cfg, reg, db).Router())
	t.Cleanup(func() {
		ts.Close()
		reg.CloseAll()
		_ = db.Close()
	})
	return &testEnv{ts: ts, db: db, reg: reg}
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{Jar: jar}
}

func do(t *testing.T, c *http.Client, method, url string, body any, out any) int {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer res.Body.Close()
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, url, err)
		}
	}
	return res.StatusCode
}

func playElephant(t *testing.T, env *testEnv, c *http.Client) session.Snapshot {
	t.Helper()
	var snap session.Snapshot
	if code := do(t, c, "POST", env.ts.URL+"/game/start", startReq{Topic: "animals", Difficulty: "easy"}, &snap); code != http.StatusOK {
		t.Fatalf("start status = %d", code)
	}
	if snap.State != session.StatePlaying || snap.Round == nil || snap.Round.Masked != "________" {
		t.Fatalf("after start: %+v", snap)
	}
	for _, l := range []string{"e", "l", "p", "h", "a", "n", "t"} {
		do(t, c, "POST", env.ts.URL+"/game/guess", guessReq{Letter: l}, &snap)
	}
	return snap
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	var body map[string]bool
	if code := do(t, newClient(t), "GET", env.ts.URL+"/health", nil, &body); code != http.StatusOK || !body["ok"] {
		t.Fatalf("health = %d %v", code, body)
	}
}

func TestGameFlowOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	c := newClient(t)

	snap := playElephant(t, env, c)
	if snap.Round.Status != "won" || snap.Round.Word != "ELEPHANT" {
		t.Fatalf("round = %+v", snap.Round)
	}
	if snap.Score != 50 || snap.Round.RoundScore != 50 {
		t.Fatalf("score = %d, round score = %d, want 50", snap.Score, snap.Round.RoundScore)
	}

	var sc map[string]int
	do(t, c, "GET", env.ts.URL+"/score", nil, &sc)
	if sc["score"] != 50 {
		t.Fatalf("/score = %v", sc)
	}

	var st storage.Stats
	do(t, c, "GET", env.ts.URL+"/stats/me", nil, &st)
	if st.Rounds != 1 || st.Wins != 1 || st.Points != 50 {
		t.Fatalf("stats = %+v", st)
	}

	var lb struct {
		Days int                      `json:"days"`
		Rows []storage.LeaderboardRow `json:"rows"`
	}
	do(t, c, "GET", env.ts.URL+"/leaderboard", nil, &lb)
	if lb.Days != 7 || len(lb.Rows) != 1 || lb.Rows[0].Points != 50 {
		t.Fatalf("leaderboard = %+v", lb)
	}

	// a fresh player sees a fresh session
	var other session.Snapshot
	do(t, newClient(t), "GET", env.ts.URL+"/game", nil, &other)
	if other.State != session.StateSetup || other.Score != 0 {
		t.Fatalf("other player = %+v", other)
	}
}

func TestNextAndReset(t *testing.T) {
	env := newTestEnv(t)
	c := newClient(t)
	playElephant(t, env, c)

	var snap session.Snapshot
	do(t, c, "POST", env.ts.URL+"/game/next", nil, &snap)
	if snap.State != session.StatePlaying || snap.RoundsPlayed != 1 || snap.Round.Status != "playing" {
		t.Fatalf("after next: %+v", snap)
	}
	do(t, c, "POST", env.ts.URL+"/game/reset", nil, &snap)
	if snap.State != session.StateSetup || snap.Score != 50 {
		t.Fatalf("after reset: %+v", snap)
	}
}

func TestStartValidation(t *testing.T) {
	env := newTestEnv(t)
	c := newClient(t)
	var e map[string]string
	if code := do(t, c, "POST", env.ts.URL+"/game/start", startReq{Topic: "animals", Difficulty: "insane"}, &e); code != http.StatusBadRequest {
		t.Fatalf("bad difficulty status = %d", code)
	}
	if code := do(t, c, "POST", env.ts.URL+"/game/start", startReq{Topic: "  ", Difficulty: "easy"}, &e); code != http.StatusBadRequest {
		t.Fatalf("blank topic status = %d", code)
	}
	if code := do(t, c, "GET", env.ts.URL+"/leaderboard?days=0", nil, &e); code != http.StatusBadRequest {
		t.Fatalf("days=0 status = %d", code)
	}
}

func TestBuyHintOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	c := newClient(t)
	playElephant(t, env, c)

	var snap session.Snapshot
	do(t, c, "POST", env.ts.URL+"/game/next", nil, &snap)
	if len(snap.Round.Hints) != 1 || snap.Round.NextHintCost != 25 {
		t.Fatalf("before hint: %+v", snap.Round)
	}
	do(t, c, "POST", env.ts.URL+"/game/hint", nil, &snap)
	if len(snap.Round.Hints) != 2 || snap.Score != 25 {
		t.Fatalf("after hint: score %d, hints %v", snap.Score, snap.Round.Hints)
	}
}

func TestSignupLoginMe(t *testing.T) {
	env := newTestEnv(t)
	c := newClient(t)

	// guest plays one round first
	playElephant(t, env, c)

	creds := credentials{Username: "alice_01", Password: "correct horse"}
	var me map[string]any
	if code := do(t, c, "POST", env.ts.URL+"/auth/signup", creds, &me); code != http.StatusOK {
		t.Fatalf("signup status = %d (%v)", code, me)
	}
	if code := do(t, c, "GET", env.ts.URL+"/auth/me", nil, &me); code != http.StatusOK || me["username"] != "alice_01" {
		t.Fatalf("me = %d %v", code, me)
	}

	// guest score and history moved to the account
	var sc map[string]int
	do(t, c, "GET", env.ts.URL+"/score", nil, &sc)
	if sc["score"] != 50 {
		t.Fatalf("score after signup = %v", sc)
	}
	var st storage.Stats
	do(t, c, "GET", env.ts.URL+"/stats/me", nil, &st)
	if st.Rounds != 1 {
		t.Fatalf("stats after signup = %+v", st)
	}

	var e map[string]string
	if code := do(t, newClient(t), "POST", env.ts.URL+"/auth/signup", creds, &e); code != http.StatusConflict {
		t.Fatalf("duplicate signup status = %d", code)
	}
	if code := do(t, newClient(t), "POST", env.ts.URL+"/auth/login", credentials{Username: "alice_01", Password: "wrong password"}, &e); code != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d", code)
	}

	c2 := newClient(t)
	if code := do(t, c2, "POST", env.ts.URL+"/auth/login", creds, &me); code != http.StatusOK {
		t.Fatalf("login status = %d", code)
	}
	do(t, c2, "GET", env.ts.URL+"/score", nil, &sc)
	if sc["score"] != 50 {
		t.Fatalf("score on second device = %v", sc)
	}

	do(t, c2, "POST", env.ts.URL+"/auth/logout", nil, &me)
	if code := do(t, c2, "GET", env.ts.URL+"/auth/me", nil, &e); code != http.StatusUnauthorized {
		t.Fatalf("me after logout = %d", code)
	}
}

func TestSignupValidation(t *testing.T) {
	env := newTestEnv(t)
	var e map[string]string
	for _, cr := range []credentials{
		{Username: "ab", Password: "long enough"},
		{Username: "bad name", Password: "long enough"},
		{Username: "alice", Password: "short"},
	} {
		if code := do(t, newClient(t), "POST", env.ts.URL+"/auth/signup", cr, &e); code != http.StatusBadRequest {
			t.Errorf("signup %+v status = %d", cr, code)
		}
	}
}

func TestNotFoundIsJSON(t *testing.T) {
	env := newTestEnv(t)
	var e map[string]string
	if code := do(t, newClient(t), "GET", env.ts.URL+"/nope", nil, &e); code != http.StatusNotFound || e["error"] != "not_found" {
		t.Fatalf("not found = %d %v", code, e)
	}
}

func TestEventsStreamSnapshotsAndAcceptsGuesses(t *testing.T) {
	env := newTestEnv(t)
	c := newClient(t)

	var snap session.Snapshot
	do(t, c, "POST", env.ts.URL+"/game/start", startReq{Topic: "animals", Difficulty: "medium"}, &snap)

	dialer := websocket.Dialer{Jar: c.Jar, HandshakeTimeout: 5 * time.Second}
	conn, _, err := dialer.Dial("ws"+strings.TrimPrefix(env.ts.URL, "http")+"/game/events", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("first snapshot: %v", err)
	}
	if snap.State != session.StatePlaying || snap.Round == nil {
		t.Fatalf("first snapshot = %+v", snap)
	}

	if err := conn.WriteJSON(eventMsg{Type: "guess", Letter: "e"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	for {
		if err := conn.ReadJSON(&snap); err != nil {
			t.Fatalf("read: %v", err)
		}
		if snap.Round != nil && slices.Contains(snap.Round.Correct, "E") {
			break
		}
	}
	if snap.Round.Masked != "E_E_____" {
		t.Fatalf("masked = %q", snap.Round.Masked)
	}
}
