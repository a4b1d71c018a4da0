package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch chan []byte) string {
	t.Helper()
	select {
	case msg, ok := <-ch:
		require.True(t, ok, "client channel closed")
		return string(msg)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
		return ""
	}
}

func drain(ch chan []byte) []string {
	var out []string
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		case <-time.After(50 * time.Millisecond):
			return out
		}
	}
}

func TestFrame(t *testing.T) {
	got := string(frame(3, "task.created", map[string]int64{"id": 7}))
	assert.Equal(t, "id: 3\nevent: task.created\ndata: {\"id\":7}\n\n", got)
}

func TestNotify_DeliversChangeWithIncreasingIDs(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Notify("capture.created", 4)
	b.Notify("checklist_item.deleted", 9)

	first := receive(t, ch)
	assert.Contains(t, first, "id: 1\n")
	assert.Contains(t, first, "event: capture.created\n")
	assert.Contains(t, first, `data: {"id":4}`)

	second := receive(t, ch)
	assert.Contains(t, second, "id: 2\n")
	assert.Contains(t, second, "event: checklist_item.deleted\n")
}

func TestNotify_ViewsThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Notify("task.created", 1)
	b.Notify("task.updated", 2)
	// Captures never affect task views.
	b.Notify("capture.created", 3)

	views, changes := 0, 0
	for _, msg := range drain(ch) {
		if strings.Contains(msg, "event: "+ViewsUpdated) {
			views++
		} else {
			changes++
		}
	}
	assert.Equal(t, 3, changes)
	assert.Equal(t, 1, views, "views.updated is throttled")
}

func TestNotify_SlowClientDoesNotBlock(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	slow := b.Subscribe()
	defer b.Unsubscribe(slow)

	for i := 0; i < clientBuffer+10; i++ {
		b.Notify("capture.updated", int64(i))
	}

	fast := b.Subscribe()
	defer b.Unsubscribe(fast)
	b.Notify("capture.deleted", 1)

	// fast may also see the tail of the earlier burst; it must get the last change.
	got := drain(fast)
	require.NotEmpty(t, got)
	assert.Contains(t, got[len(got)-1], "event: capture.deleted")
	assert.Len(t, drain(slow), clientBuffer)
}

func TestUnsubscribe_ClosesChannel(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	ch := b.Subscribe()
	b.Unsubscribe(ch)

	_, ok := <-ch
	assert.False(t, ok)
}

func TestClose_StopsClientsAndIgnoresLaterCalls(t *testing.T) {
	b := NewBroker(time.Hour)
	ch := b.Subscribe()

	b.Close()
	select {
	case _, ok := <-ch:
		assert.False(t, ok, "subscriber channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	// All no-ops after close.
	b.Notify("task.updated", 1)
	late := b.Subscribe()
	_, ok := <-late
	assert.False(t, ok)
	b.Unsubscribe(late)
	b.Close()
}

func TestServeHTTP_StreamsChanges(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	srv := httptest.NewServer(b)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// Headers are written after the client joins, so this change reaches it.
	b.Notify("task.completed", 5)

	var lines []string
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		lines = append(lines, sc.Text())
		if strings.HasPrefix(sc.Text(), "data: ") {
			break
		}
	}
	require.NoError(t, sc.Err())
	assert.Equal(t, []string{"retry: 3000", "", "id: 1", "event: task.completed", `data: {"id":5}`}, lines)
}

func TestServeHTTP_Heartbeat(t *testing.T) {
	b := NewBroker(time.Hour)
	b.heartbeat = 20 * time.Millisecond
	defer b.Close()
	srv := httptest.NewServer(b)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	sc := bufio.NewScanner(resp.Body)
	found := false
	for sc.Scan() {
		if sc.Text() == ": ping" {
			found = true
			break
		}
	}
	assert.True(t, found, "expected a heartbeat comment")
}
