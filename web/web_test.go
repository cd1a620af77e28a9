package web

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lixenwraith/vi-novel/engine"
	"github.com/lixenwraith/vi-novel/markup"
	"github.com/lixenwraith/vi-novel/script"
)

// newServer uses pacing slow enough that only skips complete a line
func newServer(t *testing.T, nodes ...script.Node) *Server {
	t.Helper()
	s, err := script.New("opening", script.Branch{Name: "opening", Nodes: nodes})
	if err != nil {
		t.Fatalf("script.New failed: %v", err)
	}
	opts := engine.Options{Pacing: engine.Pacing{Default: time.Hour, Slow: time.Hour, Pause: time.Hour}}
	return NewServer(s, opts, Config{}, log.New(io.Discard, "", 0))
}

func newTestServer(t *testing.T, nodes ...script.Node) *httptest.Server {
	t.Helper()
	srv := newServer(t, nodes...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
	})
	return ts
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readUntil(t *testing.T, conn *websocket.Conn, match func(serverMessage) bool) serverMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var m serverMessage
		if err := conn.ReadJSON(&m); err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if match(m) {
			return m
		}
	}
}

func send(t *testing.T, conn *websocket.Conn, m clientMessage) {
	t.Helper()
	if err := conn.WriteJSON(m); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
}

func isDialogue(nodeID string, typing bool) func(serverMessage) bool {
	return func(m serverMessage) bool {
		return m.Type == msgDialogue && m.Dialogue.NodeID == nodeID && m.Dialogue.Typing == typing
	}
}

func TestSessionPlaysToCompletion(t *testing.T) {
	ts := newTestServer(t,
		script.Line("n1", "protagonist", "Hello", "n2"),
		script.Line("n2", "editor", "Bye", script.End),
	)
	conn := dial(t, ts, "")

	readUntil(t, conn, isDialogue("n1", true))
	send(t, conn, clientMessage{Type: msgAdvance})
	m := readUntil(t, conn, isDialogue("n1", false))
	if m.Dialogue.HTML != "Hello" || m.Dialogue.Speaker != "protagonist" {
		t.Errorf("Unexpected dialogue %+v", m.Dialogue)
	}

	send(t, conn, clientMessage{Type: msgAdvance})
	readUntil(t, conn, isDialogue("n2", true))
	send(t, conn, clientMessage{Type: msgAdvance})
	send(t, conn, clientMessage{Type: msgAdvance})

	done := readUntil(t, conn, func(m serverMessage) bool { return m.Type == msgComplete })
	if done.Branch != "opening" {
		t.Errorf("Expected completion on opening, got %q", done.Branch)
	}
}

func TestSessionBlockedAdvanceIgnored(t *testing.T) {
	ts := newTestServer(t,
		script.Line("n1", "me", "Hello", "n2"),
		script.Line("n2", "me", "Bye", script.End),
	)
	conn := dial(t, ts, "")
	readUntil(t, conn, isDialogue("n1", true))

	send(t, conn, clientMessage{Type: msgAdvance, Blocked: true})
	send(t, conn, clientMessage{Type: msgAdvance})
	m := readUntil(t, conn, func(m serverMessage) bool { return m.Type == msgDialogue })
	if m.Dialogue.NodeID != "n1" || m.Dialogue.Typing {
		t.Errorf("Expected only the unblocked skip to apply, got %+v", m.Dialogue)
	}
}

func TestSessionChoices(t *testing.T) {
	s, err := script.New("opening",
		script.Branch{Name: "opening", Nodes: []script.Node{
			script.Line("d1", "editor", "Pick?", ""),
			&script.Choice{ID: "c1", Options: []script.Option{{Label: "win", Target: "win"}, {Label: "lose", Target: "lose"}}},
		}},
		script.Branch{Name: "win", Nodes: []script.Node{script.Line("w1", "me", "yay", script.End)}},
		script.Branch{Name: "lose", Nodes: []script.Node{script.Line("l1", "me", "nay", script.End)}},
	)
	if err != nil {
		t.Fatal(err)
	}
	opts := engine.Options{Pacing: engine.Pacing{Default: time.Hour, Slow: time.Hour, Pause: time.Hour}}
	ts := httptest.NewServer(NewServer(s, opts, Config{}, log.New(io.Discard, "", 0)).Handler())
	defer ts.Close()

	conn := dial(t, ts, "")
	readUntil(t, conn, isDialogue("d1", true))
	send(t, conn, clientMessage{Type: msgAdvance})
	send(t, conn, clientMessage{Type: msgAdvance})

	m := readUntil(t, conn, func(m serverMessage) bool { return m.Type == msgChoices })
	if len(m.Labels) != 2 || m.Prompt == nil || m.Prompt.HTML != "Pick?" {
		t.Fatalf("Unexpected choices message %+v", m)
	}

	send(t, conn, clientMessage{Type: msgHighlight, Index: 1})
	m = readUntil(t, conn, func(m serverMessage) bool { return m.Type == msgChoices })
	if m.Highlight != 1 {
		t.Errorf("Expected highlight 1, got %d", m.Highlight)
	}

	send(t, conn, clientMessage{Type: msgConfirm})
	readUntil(t, conn, isDialogue("l1", true))
}

func TestSessionEntryBranchQuery(t *testing.T) {
	s, err := script.New("opening",
		script.Branch{Name: "opening", Nodes: []script.Node{script.Line("a", "me", "a", script.End)}},
		script.Branch{Name: "win", Nodes: []script.Node{script.Line("w1", "me", "w", script.End)}},
	)
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(NewServer(s, engine.Options{}, Config{}, log.New(io.Discard, "", 0)).Handler())
	defer ts.Close()

	conn := dial(t, ts, "?branch=win")
	m := readUntil(t, conn, func(m serverMessage) bool { return m.Type == msgDialogue })
	if m.Dialogue.Branch != "win" {
		t.Errorf("Expected entry at win, got %q", m.Dialogue.Branch)
	}

	resp, err := http.Get(ts.URL + "/ws?branch=nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown branch, got %d", resp.StatusCode)
	}
}

func TestSessionReportsBadInput(t *testing.T) {
	ts := newTestServer(t, script.Line("n1", "me", "x", "ghost"))
	conn := dial(t, ts, "")
	readUntil(t, conn, isDialogue("n1", true))

	send(t, conn, clientMessage{Type: "jump"})
	m := readUntil(t, conn, func(m serverMessage) bool { return m.Type == msgError })
	if !strings.Contains(m.Error, "jump") {
		t.Errorf("Expected unknown type error, got %q", m.Error)
	}

	send(t, conn, clientMessage{Type: msgAdvance})
	send(t, conn, clientMessage{Type: msgAdvance})
	m = readUntil(t, conn, func(m serverMessage) bool { return m.Type == msgError })
	if !strings.Contains(m.Error, "ghost") {
		t.Errorf("Expected dangling target error, got %q", m.Error)
	}
}

func TestHealthzAndIndex(t *testing.T) {
	ts := newTestServer(t, script.Line("n1", "me", "x", script.End))

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected ok status, got %v", body)
	}

	resp, err = http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	page, _ := io.ReadAll(resp.Body)
	if !strings.Contains(resp.Header.Get("Content-Type"), "text/html") || !strings.Contains(string(page), "/ws") {
		t.Error("Expected embedded reader page")
	}
}

func TestDialogueHTMLSanitized(t *testing.T) {
	policy := newPolicy()
	text := markup.MustParse("<slow>a</slow><strong>b</strong> &lt;script&gt;")

	f := engine.DialogueFrame{Markup: text, Revealed: text.Len()}
	got := dialogueHTML(f, policy)
	if !strings.HasPrefix(got, `<span class="slow">a</span><strong>b</strong>`) {
		t.Errorf("Unexpected HTML %q", got)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("Escaped text must stay escaped, got %q", got)
	}

	f.Revealed = 1
	if got := dialogueHTML(f, policy); got != `<span class="slow">a</span>` {
		t.Errorf("Expected balanced prefix, got %q", got)
	}

	raw := engine.DialogueFrame{Text: "<img src=x onerror=alert(1)>", Revealed: 1}
	if got := dialogueHTML(raw, policy); strings.Contains(got, "<img") {
		t.Errorf("Unparsable text must be sanitized, got %q", got)
	}
}

func TestServeShutdownEndsSessions(t *testing.T) {
	srv := newServer(t,
		script.Line("n1", "protagonist", "Hello", script.End),
	)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	served := make(chan error, 1)
	go func() { served <- srv.Serve(ctx, ln) }()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws", nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()
	readUntil(t, conn, isDialogue("n1", true))

	cancel()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var m serverMessage
		err := conn.ReadJSON(&m)
		if err == nil {
			continue
		}
		if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
			t.Fatalf("Expected going-away close, got %v", err)
		}
		break
	}

	select {
	case err := <-served:
		if err != nil {
			t.Errorf("Expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after shutdown")
	}
	if n := srv.sessions.Load(); n != 0 {
		t.Errorf("Expected no open sessions, got %d", n)
	}
}

func TestClosedServerRefusesSessions(t *testing.T) {
	srv := newServer(t, script.Line("n1", "me", "x", script.End))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	srv.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("Expected dial to fail after Close")
	}
	if resp == nil || resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %v", resp)
	}
}
