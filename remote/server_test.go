package remote

import (
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"go.qspeak.app/qspeak/event"
)

type dispatchRecorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (d *dispatchRecorder) dispatch(e event.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, e)
}

func (d *dispatchRecorder) names() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.events))
	for i, e := range d.events {
		out[i] = e.Name()
	}
	return out
}

func startTestServer(t *testing.T, password *string) (*Server, *dispatchRecorder, string) {
	t.Helper()
	rec := &dispatchRecorder{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewServer(rec.dispatch, func(string) {}, log)
	if err := srv.ApplySettings(Settings{Enabled: true, Port: 0, Password: password}); err != nil {
		t.Fatalf("ApplySettings: %v", err)
	}
	t.Cleanup(func() { srv.Close() })
	return srv, rec, "ws://" + srv.Addr()
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, payload string) wsResponse {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		t.Fatalf("write: %v", err)
	}
	var resp wsResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	return resp
}

func TestToggleRecordingDispatchesTwoEvents(t *testing.T) {
	_, rec, url := startTestServer(t, nil)
	conn := dial(t, url)

	resp := roundTrip(t, conn, `{"action":"toggle_recording"}`)
	if !resp.Success || resp.Message != "Action 'toggle_recording' executed" {
		t.Fatalf("resp = %+v", resp)
	}
	want := []string{"ActionResetRecordingShortcutTimer", "ActionRecording"}
	got := rec.names()
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("events = %v, want %v", got, want)
	}
}

func TestActionAliases(t *testing.T) {
	tests := []struct {
		payload string
		message string
	}{
		{`{"action":"toggle_personas"}`, "Action 'show_personas' executed"},
		{`{"action":"open_personas"}`, "Action 'show_personas' executed"},
		{`{"action":"screenshot"}`, "Action 'take_screenshot' executed"},
	}
	_, _, url := startTestServer(t, nil)
	conn := dial(t, url)

	for _, tt := range tests {
		resp := roundTrip(t, conn, tt.payload)
		if !resp.Success || resp.Message != tt.message {
			t.Errorf("%s: resp = %+v", tt.payload, resp)
		}
	}
}

func TestPasswordRules(t *testing.T) {
	password := "hunter2"
	_, rec, url := startTestServer(t, &password)
	conn := dial(t, url)

	resp := roundTrip(t, conn, `{"action":"copy_text"}`)
	if resp.Success || resp.Message != "Password is required" {
		t.Fatalf("missing password: %+v", resp)
	}
	resp = roundTrip(t, conn, `{"action":"copy_text","password":"wrong"}`)
	if resp.Success || resp.Message != "Invalid password" {
		t.Fatalf("wrong password: %+v", resp)
	}
	resp = roundTrip(t, conn, `{"action":"copy_text","password":"hunter2"}`)
	if !resp.Success {
		t.Fatalf("correct password: %+v", resp)
	}
	if got := rec.names(); len(got) != 1 || got[0] != "ActionCopyText" {
		t.Fatalf("events = %v", got)
	}
}

func TestInvalidPayloads(t *testing.T) {
	_, rec, url := startTestServer(t, nil)
	conn := dial(t, url)

	resp := roundTrip(t, conn, `not json`)
	if resp.Success || !strings.HasPrefix(resp.Message, "Invalid payload:") {
		t.Fatalf("bad json: %+v", resp)
	}
	resp = roundTrip(t, conn, `{"action":"explode"}`)
	if resp.Success || !strings.HasPrefix(resp.Message, "Invalid payload:") {
		t.Fatalf("unknown action: %+v", resp)
	}
	if got := rec.names(); len(got) != 0 {
		t.Fatalf("events = %v, want none", got)
	}
}

func TestBinaryPayloadRejected(t *testing.T) {
	_, _, url := startTestServer(t, nil)
	conn := dial(t, url)

	if err := conn.WriteMessage(websocket.BinaryMessage, []byte{1, 2, 3}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var resp wsResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	if resp.Success || resp.Message != "Binary payloads are not supported" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestApplySettingsRestartsOnlyOnChange(t *testing.T) {
	srv, _, _ := startTestServer(t, nil)
	addr := srv.Addr()

	// Same settings keep the listener.
	if err := srv.ApplySettings(Settings{Enabled: true, Port: 0, Password: nil}); err != nil {
		t.Fatalf("ApplySettings: %v", err)
	}
	if srv.Addr() != addr {
		t.Fatal("unchanged settings must not restart the server")
	}

	password := "p"
	if err := srv.ApplySettings(Settings{Enabled: true, Port: 0, Password: &password}); err != nil {
		t.Fatalf("ApplySettings: %v", err)
	}
	if srv.Addr() == addr {
		t.Fatal("changed password must restart the server")
	}

	if err := srv.ApplySettings(Settings{Enabled: false}); err != nil {
		t.Fatalf("ApplySettings: %v", err)
	}
	if srv.Addr() != "" {
		t.Fatal("disabling must stop the server")
	}
}

func TestBindFailureReportsError(t *testing.T) {
	var reported string
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	first := NewServer(func(event.Event) {}, func(string) {}, log)
	if err := first.ApplySettings(Settings{Enabled: true, Port: 0}); err != nil {
		t.Fatalf("ApplySettings: %v", err)
	}
	defer first.Close()

	_, portStr, err := net.SplitHostPort(first.Addr())
	if err != nil {
		t.Fatalf("SplitHostPort: %v", err)
	}
	portNum, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("Atoi: %v", err)
	}
	port := uint16(portNum)

	second := NewServer(func(event.Event) {}, func(msg string) { reported = msg }, log)
	if err := second.ApplySettings(Settings{Enabled: true, Port: port}); err == nil {
		second.Close()
		t.Fatal("binding an occupied port should fail")
	}
	if !strings.HasPrefix(reported, "Unable to start WebSocket server on port ") {
		t.Fatalf("reported = %q", reported)
	}
}
