package channels

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ritmolabs/ritmo/internal/bus"
	"github.com/ritmolabs/ritmo/internal/schema"
)

// SnapshotHandler evaluates one behavioral snapshot and returns the payload
// written back on the socket.
type SnapshotHandler func(ctx context.Context, userID string, snap schema.SignalSnapshot) (any, error)

// inboundFrame is one websocket message from a companion front end.
// kind "snapshot" carries behavioral signals for evaluation; kind "message"
// is a regular chat turn routed through the bus.
type inboundFrame struct {
	Kind     string                 `json:"type"`
	UserID   string                 `json:"user_id"`
	Text     string                 `json:"text,omitempty"`
	Snapshot *schema.SignalSnapshot `json:"snapshot,omitempty"`
}

type outboundFrame struct {
	Kind    string `json:"type"` // "reply" | "evaluation" | "error"
	Content any    `json:"content"`
}

// WebSignalsChannel serves the websocket endpoint used by kiosk and web
// front ends. Unlike chat channels it also accepts behavioral snapshots.
type WebSignalsChannel struct {
	Base
	addr    string
	handler SnapshotHandler

	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[string]*websocket.Conn // userID → active socket
}

func NewWebSignalsChannel(addr string, allowFrom []string, b bus.Bus, handler SnapshotHandler) *WebSignalsChannel {
	return &WebSignalsChannel{
		Base:    NewBase("websignals", b, allowFrom),
		addr:    addr,
		handler: handler,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		conns: make(map[string]*websocket.Conn),
	}
}

func (w *WebSignalsChannel) Name() string { return "websignals" }

func (w *WebSignalsChannel) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(rw http.ResponseWriter, r *http.Request) {
		conn, err := w.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			slog.Warn("websignals: upgrade failed", "remote", r.RemoteAddr, "err", err)
			return
		}
		go w.readLoop(ctx, conn)
	})

	srv := &http.Server{Addr: w.addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("websignals: listening", "addr", w.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("websignals: server: %w", err)
	}
}

func (w *WebSignalsChannel) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer func() {
		w.dropConn(conn)
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			w.writeFrame(conn, outboundFrame{Kind: "error", Content: "malformed frame"})
			continue
		}
		if frame.UserID == "" {
			w.writeFrame(conn, outboundFrame{Kind: "error", Content: "user_id required"})
			continue
		}
		if !w.IsAllowed(frame.UserID) {
			slog.Warn("websignals: access denied", "user", frame.UserID)
			w.writeFrame(conn, outboundFrame{Kind: "error", Content: "access denied"})
			continue
		}
		w.registerConn(frame.UserID, conn)

		switch frame.Kind {
		case "snapshot":
			w.handleSnapshot(ctx, conn, frame)
		case "message":
			if frame.Text == "" {
				w.writeFrame(conn, outboundFrame{Kind: "error", Content: "text required"})
				continue
			}
			// Replies come back asynchronously through Send.
			w.HandleMessage(frame.UserID, frame.UserID, frame.Text, nil)
		default:
			w.writeFrame(conn, outboundFrame{Kind: "error", Content: fmt.Sprintf("unknown frame type %q", frame.Kind)})
		}
	}
}

func (w *WebSignalsChannel) handleSnapshot(ctx context.Context, conn *websocket.Conn, frame inboundFrame) {
	if frame.Snapshot == nil {
		w.writeFrame(conn, outboundFrame{Kind: "error", Content: "snapshot required"})
		return
	}
	if w.handler == nil {
		w.writeFrame(conn, outboundFrame{Kind: "error", Content: "snapshot evaluation not available"})
		return
	}
	result, err := w.handler(ctx, frame.UserID, *frame.Snapshot)
	if err != nil {
		slog.Error("websignals: snapshot evaluation failed", "user", frame.UserID, "err", err)
		w.writeFrame(conn, outboundFrame{Kind: "error", Content: "evaluation failed"})
		return
	}
	w.writeFrame(conn, outboundFrame{Kind: "evaluation", Content: result})
}

// Send delivers an outbound chat reply to the user's active socket.
func (w *WebSignalsChannel) Send(_ context.Context, msg bus.OutboundMessage) error {
	w.mu.Lock()
	conn, ok := w.conns[msg.ChatID]
	w.mu.Unlock()
	if !ok {
		return fmt.Errorf("websignals: no active connection for %s", msg.ChatID)
	}
	return conn.WriteJSON(outboundFrame{Kind: "reply", Content: msg.Content})
}

func (w *WebSignalsChannel) registerConn(userID string, conn *websocket.Conn) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.conns[userID] = conn
}

func (w *WebSignalsChannel) dropConn(conn *websocket.Conn) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, c := range w.conns {
		if c == conn {
			delete(w.conns, id)
		}
	}
}

func (w *WebSignalsChannel) writeFrame(conn *websocket.Conn, frame outboundFrame) {
	if err := conn.WriteJSON(frame); err != nil {
		slog.Debug("websignals: write failed", "err", err)
	}
}
