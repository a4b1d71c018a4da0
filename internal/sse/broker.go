// Package sse streams committed changes to browsers as Server-Sent Events.
package sse

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ViewsUpdated is the throttled event telling clients that derived task views
// (stale list, carryover candidates) may have changed.
const ViewsUpdated = "views.updated"

const (
	clientBuffer     = 64
	defaultHeartbeat = 25 * time.Second
	// retryMillis is the reconnect delay suggested to EventSource clients.
	retryMillis = 3000
)

// Change is one committed mutation, e.g. {"task.updated", 7}.
type Change struct {
	Event string
	ID    int64
}

type client chan []byte

// Broker fans changes out to connected clients.
//
// One goroutine owns the client set, the event sequence and the views throttle.
// Everything else talks to it over channels.
type Broker struct {
	viewsEvery time.Duration
	heartbeat  time.Duration

	join    chan client
	leave   chan client
	changes chan Change

	done      chan struct{}
	exited    chan struct{}
	closeOnce sync.Once
}

// NewBroker starts a broker that emits views.updated at most once per viewsThrottle.
func NewBroker(viewsThrottle time.Duration) *Broker {
	if viewsThrottle <= 0 {
		viewsThrottle = 2 * time.Second
	}
	b := &Broker{
		viewsEvery: viewsThrottle,
		heartbeat:  defaultHeartbeat,
		join:       make(chan client),
		leave:      make(chan client),
		changes:    make(chan Change, 256),
		done:       make(chan struct{}),
		exited:     make(chan struct{}),
	}
	go b.loop()
	return b
}

// frame encodes one SSE message. seq becomes the event id so a client can spot gaps.
func frame(seq uint64, event string, data any) []byte {
	payload, err := json.Marshal(data)
	if err != nil {
		payload = []byte("{}")
	}
	var buf bytes.Buffer
	buf.WriteString("id: ")
	buf.WriteString(strconv.FormatUint(seq, 10))
	buf.WriteString("\nevent: ")
	buf.WriteString(event)
	buf.WriteString("\ndata: ")
	buf.Write(payload)
	buf.WriteString("\n\n")
	return buf.Bytes()
}

func (b *Broker) loop() {
	defer close(b.exited)

	clients := make(map[client]struct{})
	var (
		seq       uint64
		lastViews time.Time
	)
	send := func(event string, data any) {
		seq++
		msg := frame(seq, event, data)
		for c := range clients {
			select {
			case c <- msg:
			default:
				// Slow client; it will resync on views.updated or reconnect.
			}
		}
	}

	for {
		select {
		case <-b.done:
			for c := range clients {
				close(c)
			}
			return

		case c := <-b.join:
			clients[c] = struct{}{}

		case c := <-b.leave:
			if _, ok := clients[c]; ok {
				delete(clients, c)
				close(c)
			}

		case ch := <-b.changes:
			send(ch.Event, map[string]int64{"id": ch.ID})
			if !strings.HasPrefix(ch.Event, "task.") {
				continue
			}
			if now := time.Now(); now.Sub(lastViews) >= b.viewsEvery {
				lastViews = now
				send(ViewsUpdated, struct{}{})
			}
		}
	}
}

// Close stops the broker and closes every client stream. It is safe to call twice.
func (b *Broker) Close() {
	b.closeOnce.Do(func() { close(b.done) })
	<-b.exited
}

// Subscribe registers a client. The channel is closed when the client leaves or
// the broker stops.
func (b *Broker) Subscribe() chan []byte {
	c := make(client, clientBuffer)
	select {
	case b.join <- c:
	case <-b.exited:
		close(c)
	}
	return c
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	select {
	case b.leave <- ch:
	case <-b.exited:
	}
}

// Notify publishes a committed change such as "task.updated" for entity id.
// Task changes also emit a throttled views.updated event. After Close it is a no-op.
func (b *Broker) Notify(event string, id int64) {
	select {
	case <-b.done:
		return
	default:
	}
	select {
	case b.changes <- Change{Event: event, ID: id}:
	case <-b.exited:
	}
}

// ServeHTTP streams changes to one client until it disconnects (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("retry: " + strconv.Itoa(retryMillis) + "\n\n"))
	flusher.Flush()

	beat := time.NewTicker(b.heartbeat)
	defer beat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-beat.C:
			// Comment line; keeps idle proxies from dropping the stream.
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
