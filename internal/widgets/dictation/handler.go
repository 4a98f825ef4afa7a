package dictation

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/reverie/internal/plugins/auth"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 16 << 10
)

// ClientMessage is what the editor sends over the socket.
type ClientMessage struct {
	Type  string `json:"type"` // start, transcript, stop
	Text  string `json:"text,omitempty"`
	Final bool   `json:"final,omitempty"`
}

// ServerMessage is what the server sends back.
type ServerMessage struct {
	Type    string `json:"type"` // state, transcript, final, error
	State   State  `json:"state,omitempty"`
	Text    string `json:"text,omitempty"`
	Message string `json:"message,omitempty"`
}

// Handler upgrades GET /dictation/ws and runs one dictation session at a
// time per connection.
type Handler struct {
	upgrader websocket.Upgrader
}

// NewHandler creates a dictation handler. The upgrader's default origin
// check only admits same-origin pages.
func NewHandler() *Handler {
	return &Handler{upgrader: websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}}
}

// RegisterRoutes mounts the dictation socket behind auth.
func RegisterRoutes(e *echo.Echo, h *Handler, authSvc auth.AuthService) {
	e.GET("/dictation/ws", h.Serve, auth.RequireAuth(authSvc))
}

// Serve handles one websocket connection.
func (h *Handler) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already replied with an HTTP error.
		slog.Debug("dictation upgrade failed", slog.Any("error", err))
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	pc := &peer{conn: conn, userID: auth.GetUserID(c)}
	defer func() {
		cancel()
		pc.wg.Wait()
		conn.Close()
	}()

	go pc.keepalive(ctx)
	pc.send(ServerMessage{Type: EventState, State: StateIdle})
	pc.readLoop(ctx)
	return nil
}

// peer is one connected editor.
type peer struct {
	conn    *websocket.Conn
	userID  string
	writeMu sync.Mutex
	wg      sync.WaitGroup
	session *Session
}

func (p *peer) send(msg ServerMessage) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return p.conn.WriteJSON(msg)
}

func (p *peer) keepalive(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.writeMu.Lock()
			err := p.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			p.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (p *peer) readLoop(ctx context.Context) {
	p.conn.SetReadLimit(maxMessageSize)
	p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg ClientMessage
		if err := p.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("dictation socket closed", slog.String("user_id", p.userID), slog.Any("error", err))
			}
			return
		}
		p.conn.SetReadDeadline(time.Now().Add(pongWait))
		p.handle(ctx, msg)
	}
}

func (p *peer) handle(ctx context.Context, msg ClientMessage) {
	switch msg.Type {
	case "start":
		if p.session != nil && p.session.State() == StateListening {
			p.sendError("dictation is already running")
			return
		}
		p.session = Start(ctx)
		p.forward(p.session)
		slog.Debug("dictation started", slog.String("user_id", p.userID))

	case "transcript":
		if p.session == nil {
			p.sendError(ErrNotListening.Error())
			return
		}
		if err := p.session.Push(Transcript{Text: msg.Text, Final: msg.Final}); err != nil {
			p.sendError(err.Error())
		}

	case "stop":
		if p.session == nil {
			p.sendError(ErrNotListening.Error())
			return
		}
		text, err := p.session.Stop()
		if err != nil {
			p.sendError(err.Error())
			return
		}
		slog.Debug("dictation finished", slog.String("user_id", p.userID), slog.Int("length", len(text)))

	default:
		p.sendError("unknown message type")
	}
}

// forward relays a session's events until it closes.
func (p *peer) forward(s *Session) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for ev := range s.Events() {
			if err := p.send(ServerMessage{Type: ev.Type, State: ev.State, Text: ev.Text}); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					slog.Debug("dictation write failed", slog.Any("error", err))
				}
				return
			}
		}
	}()
}

func (p *peer) sendError(message string) {
	if err := p.send(ServerMessage{Type: "error", Message: message}); err != nil {
		slog.Debug("dictation write failed", slog.Any("error", err))
	}
}
