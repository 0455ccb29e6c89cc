package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/lop-hoc/lophoc-server/internal/forum"
)

func TestCommentsFeed(t *testing.T) {
	s, _ := newTestServer(t, "")
	ts := httptest.NewServer(s.Routes())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/nodes/bai-1/comments"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("websocket.Dial() error = %v", err)
	}
	defer conn.CloseNow()

	// Let the handler reach its subscribe before mutating the thread.
	time.Sleep(100 * time.Millisecond)

	resp, err := http.Post(ts.URL+"/api/nodes/bai-1/comments", "application/json",
		strings.NewReader(`{"author":"Nam","content":"Câu 3 làm thế nào ạ?"}`))
	if err != nil {
		t.Fatalf("post comment: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("post comment status = %d", resp.StatusCode)
	}

	var ev forum.Event
	if err := wsjson.Read(ctx, conn, &ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if ev.Type != forum.EventInsert {
		t.Errorf("event type = %q, want insert", ev.Type)
	}
	if ev.Comment == nil || ev.Comment.Content != "Câu 3 làm thế nào ạ?" {
		t.Errorf("event comment = %+v", ev.Comment)
	}

	// Events for other threads stay out of this feed.
	resp, err = http.Post(ts.URL+"/api/nodes/other/comments", "application/json",
		strings.NewReader(`{"author":"Lan","content":"khác bài"}`))
	if err != nil {
		t.Fatalf("post comment: %v", err)
	}
	resp.Body.Close()

	readCtx, readCancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer readCancel()
	var stray forum.Event
	if err := wsjson.Read(readCtx, conn, &stray); err == nil {
		t.Errorf("received stray event from another thread: %+v", stray)
	}
}
