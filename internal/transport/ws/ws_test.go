package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"chronoforge/internal/engine"
	"chronoforge/internal/storage"
)

const (
	owner engine.Address = "0x00000000000000000000000000000000000000aa"
	alice engine.Address = "0x1111111111111111111111111111111111111111"
)

type env struct {
	svc *engine.Service
	hub *Hub
	srv *httptest.Server
	now *time.Time

	close func()
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	db, err := storage.Open(ctx, filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	hub := NewHub(nil)
	svc := engine.NewService(db,
		engine.WithClock(engine.ClockFunc(func() time.Time { return now })),
		engine.WithSinks(hub),
	)
	require.NoError(t, svc.Deploy(ctx, owner))

	srv := httptest.NewServer(NewAPI(svc, hub, nil).Routes())
	return &env{svc: svc, hub: hub, srv: srv, now: &now, close: func() {
		hub.Close()
		srv.Close()
		_ = db.Close()
	}}
}

func (e *env) dial(t *testing.T, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/events" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return e.hub.Subscribers() > 0 }, time.Second, 5*time.Millisecond)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(msg, &out))
	return out
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp.StatusCode
}

func TestHubStreamsCommittedEvents(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	e := newEnv(t)
	defer e.close()
	ctx := context.Background()
	conn := e.dial(t, "")
	defer conn.Close()

	res, err := e.svc.Mint(ctx, alice, e.svc.Rules().MintPrice)
	require.NoError(t, err)

	first := readEvent(t, conn)
	assert.Equal(t, string(engine.EventTransfer), first["kind"])
	second := readEvent(t, conn)
	assert.Equal(t, string(engine.EventMinted), second["kind"])
	assert.EqualValues(t, res.TokenID, second["token_id"])

	// A rejected energize publishes nothing.
	_, err = e.svc.Energize(ctx, alice, res.TokenID)
	require.ErrorIs(t, err, engine.ErrCooldownActive)

	*e.now = e.now.Add(24 * time.Hour)
	_, err = e.svc.Energize(ctx, alice, res.TokenID)
	require.NoError(t, err)

	next := readEvent(t, conn)
	assert.Equal(t, string(engine.EventEnergized), next["kind"])
	data := next["data"].(map[string]any)
	assert.EqualValues(t, 50, data["gain"])
	assert.EqualValues(t, 1, data["streak"])

	require.NoError(t, conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second)))
	require.Eventually(t, func() bool { return e.hub.Subscribers() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHubTokenFilter(t *testing.T) {
	e := newEnv(t)
	defer e.close()
	ctx := context.Background()

	first, err := e.svc.Mint(ctx, alice, e.svc.Rules().MintPrice)
	require.NoError(t, err)

	conn := e.dial(t, "?token=1")
	defer conn.Close()

	_, err = e.svc.Mint(ctx, alice, e.svc.Rules().MintPrice)
	require.NoError(t, err)
	*e.now = e.now.Add(24 * time.Hour)
	_, err = e.svc.Energize(ctx, alice, first.TokenID)
	require.NoError(t, err)

	ev := readEvent(t, conn)
	assert.EqualValues(t, 1, ev["token_id"])
	assert.Equal(t, string(engine.EventTransfer), ev["kind"])
}

func TestHubRejectsBadFilter(t *testing.T) {
	e := newEnv(t)
	defer e.close()
	resp, err := http.Get(e.srv.URL + "/events?token=abc")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHubDropsSlowSubscriber(t *testing.T) {
	hub := NewHub(nil)
	hub.queueSize = 1
	id, out, ok := hub.subscribe(nil)
	require.True(t, ok)

	ev := engine.Event{Seq: 1, Kind: engine.EventWithdrawn, At: time.Now()}
	require.NoError(t, hub.Publish(context.Background(), ev))
	require.NoError(t, hub.Publish(context.Background(), ev))
	assert.Zero(t, hub.Subscribers())

	<-out
	_, open := <-out
	assert.False(t, open, "slow subscriber channel must be closed")

	hub.unsubscribe(id)
	hub.wg.Done()
	hub.Close()
}

func TestAPIReads(t *testing.T) {
	e := newEnv(t)
	defer e.close()
	ctx := context.Background()

	res, err := e.svc.Mint(ctx, alice, e.svc.Rules().MintPrice)
	require.NoError(t, err)

	var tok tokenView
	require.Equal(t, http.StatusOK, getJSON(t, e.srv.URL+"/tokens/0", &tok))
	assert.Equal(t, res.TokenID, tok.ID)
	assert.Equal(t, string(alice), tok.Owner)
	assert.Equal(t, "Gen-1", tok.Generation)
	assert.Equal(t, 100, tok.Purity)
	assert.True(t, strings.HasPrefix(tok.TokenURI, "data:application/json;base64,"))

	var holder holderView
	require.Equal(t, http.StatusOK, getJSON(t, e.srv.URL+"/holders/"+string(alice)+"/tokens", &holder))
	assert.Equal(t, []int64{0}, holder.Tokens)
	assert.Equal(t, int64(1), holder.Balance)

	var stats statsView
	require.Equal(t, http.StatusOK, getJSON(t, e.srv.URL+"/stats", &stats))
	assert.Equal(t, int64(1), stats.TotalMinted)
	assert.Equal(t, int64(1), stats.TotalSupply)
	assert.Equal(t, string(owner), stats.Owner)

	var consts constantsView
	require.Equal(t, http.StatusOK, getJSON(t, e.srv.URL+"/constants", &consts))
	assert.Equal(t, int64(1_000_000), consts.MintPriceGwei)
	assert.Equal(t, int64(500), consts.EvolutionThreshold)

	var history []map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, e.srv.URL+"/history?after=1&limit=10", &history))
	require.Len(t, history, 2)
	assert.Equal(t, string(engine.EventTransfer), history[0]["kind"])
	assert.Equal(t, string(engine.EventMinted), history[1]["kind"])
	assert.EqualValues(t, 3, history[1]["seq"])
}

func TestAPIErrors(t *testing.T) {
	e := newEnv(t)
	defer e.close()

	var ev errorView
	assert.Equal(t, http.StatusNotFound, getJSON(t, e.srv.URL+"/tokens/42", &ev))
	assert.Equal(t, string(engine.KindTokenNotFound), ev.Kind)

	ev = errorView{}
	assert.Equal(t, http.StatusBadRequest, getJSON(t, e.srv.URL+"/tokens/abc", &ev))
	assert.Equal(t, string(engine.KindInvalidInput), ev.Kind)

	ev = errorView{}
	assert.Equal(t, http.StatusBadRequest, getJSON(t, e.srv.URL+"/holders/0xnope/tokens", &ev))

	ev = errorView{}
	assert.Equal(t, http.StatusBadRequest, getJSON(t, e.srv.URL+"/history?limit=-1", &ev))
}

func TestTailPublishesNewEvents(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx := context.Background()
	db, err := storage.Open(ctx, filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer db.Close()

	svc := engine.NewService(db)
	require.NoError(t, svc.Deploy(ctx, owner))
	from, err := svc.LastEventSeq(ctx)
	require.NoError(t, err)

	got := make(chan engine.Event, 16)
	sink := engine.EventSinkFunc(func(_ context.Context, ev engine.Event) error {
		got <- ev
		return nil
	})

	tailCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		Tail(tailCtx, svc, sink, from, 10*time.Millisecond, nil)
	}()

	_, err = svc.Mint(ctx, alice, svc.Rules().MintPrice)
	require.NoError(t, err)

	var kinds []engine.EventKind
	for len(kinds) < 2 {
		select {
		case ev := <-got:
			kinds = append(kinds, ev.Kind)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for tailed events, got %v", kinds)
		}
	}
	cancel()
	<-done

	assert.Equal(t, []engine.EventKind{engine.EventTransfer, engine.EventMinted}, kinds)
}
