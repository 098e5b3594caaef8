package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/flat-stake/internal/display"
	"github.com/yourusername/flat-stake/internal/input"
	"github.com/yourusername/flat-stake/internal/logger"
	"github.com/yourusername/flat-stake/internal/metrics"
	"github.com/yourusername/flat-stake/internal/models"
	"github.com/yourusername/flat-stake/internal/session"
	"github.com/yourusername/flat-stake/internal/share"
	"golang.org/x/time/rate"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 1024

	sendBufferSize = 64
)

// Message types exchanged on a live session
const (
	MsgSnapshot = "snapshot"
	MsgShare    = "share"
	MsgState    = "state"
	MsgPost     = "post"
	MsgError    = "error"
)

// LiveConfig configures live sessions
type LiveConfig struct {
	AllowedOrigins    []string
	DefaultBudget     int64
	MaxOutcomes       int
	MessagesPerSecond float64
	Burst             int
}

// LiveHandler upgrades connections and gives each one its own session
type LiveHandler struct {
	ctx       context.Context
	cfg       LiveConfig
	allocator session.Allocator
	formatter *display.Formatter
	sharer    *share.Sharer
	logger    *logrus.Logger
	upgrader  websocket.Upgrader
}

// NewLiveHandler creates a live session handler. Sessions end when ctx is cancelled.
func NewLiveHandler(ctx context.Context, cfg LiveConfig, alloc session.Allocator, formatter *display.Formatter, sharer *share.Sharer, log *logrus.Logger) *LiveHandler {
	h := &LiveHandler{
		ctx:       ctx,
		cfg:       cfg,
		allocator: alloc,
		formatter: formatter,
		sharer:    sharer,
		logger:    log,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *LiveHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.cfg.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	u, err := url.Parse(origin)
	return err == nil && strings.EqualFold(u.Host, r.Host)
}

// ServeHTTP handles GET /ws
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	id := uuid.New().String()
	c := &liveClient{
		id:          id,
		conn:        conn,
		send:        make(chan ServerMessage, sendBufferSize),
		limiter:     rate.NewLimiter(rate.Limit(h.cfg.MessagesPerSecond), h.cfg.Burst),
		formatter:   h.formatter,
		sharer:      h.sharer,
		maxOutcomes: h.cfg.MaxOutcomes,
		log:         logger.NewSessionLogger(h.logger, id),
	}
	c.session = session.New(session.Options{
		DefaultBudget: h.cfg.DefaultBudget,
		Allocator:     h.allocator,
		Listener:      c.onUpdate,
		Logger:        c.log,
	})

	metrics.SessionOpened()
	c.log.LogConnection("open", r.RemoteAddr)

	ctx, cancel := context.WithCancel(h.ctx)
	go c.writePump(ctx)
	c.trySend(c.stateMessage(MsgSnapshot, c.session.Result()))

	go func() {
		c.readPump(ctx)
		cancel()
		metrics.SessionClosed()
		c.log.LogConnection("close", r.RemoteAddr)
	}()
}

type liveClient struct {
	id          string
	conn        *websocket.Conn
	send        chan ServerMessage
	limiter     *rate.Limiter
	session     *session.Session
	formatter   *display.Formatter
	sharer      *share.Sharer
	maxOutcomes int
	log         *logger.SessionLogger
}

func (c *liveClient) readPump(ctx context.Context) {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.WithError(err).Warn("Unexpected websocket close")
			}
			return
		}

		if !c.limiter.Allow() {
			metrics.RecordThrottledMessage()
			c.trySend(c.errorMessage("rate limit exceeded"))
			continue
		}
		c.handle(msg)
	}
}

func (c *liveClient) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.log.WithError(err).Warn("Websocket write failed")
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handle applies one client message. Successful mutations are pushed by onUpdate.
func (c *liveClient) handle(msg ClientMessage) {
	var err error
	switch msg.Type {
	case MsgSnapshot:
		c.trySend(c.stateMessage(MsgSnapshot, c.session.Result()))
	case MsgShare:
		c.share()
	case session.OpSetBudget:
		c.session.SetBudgetText(msg.Value)
	case session.OpAddOutcome:
		if n := len(c.session.Snapshot().Outcomes); c.maxOutcomes > 0 && n >= c.maxOutcomes {
			c.trySend(c.errorMessage(fmt.Sprintf("at most %d outcomes", c.maxOutcomes)))
			return
		}
		c.session.AddOutcome()
	case session.OpRemoveOutcome:
		_, err = c.session.RemoveOutcome(msg.ID)
	case session.OpUpdateOdds:
		_, err = c.session.UpdateOddsText(msg.ID, msg.Value)
	case session.OpUpdateLabel:
		_, err = c.session.UpdateLabel(msg.ID, input.ParseLabel(msg.Value))
	case session.OpReset:
		if !msg.Confirm {
			c.trySend(c.errorMessage("reset requires confirm"))
			return
		}
		c.session.Reset()
	default:
		c.trySend(c.errorMessage("unknown message type: " + msg.Type))
		return
	}

	if err != nil {
		c.trySend(c.errorMessage(err.Error()))
	}
}

func (c *liveClient) share() {
	update := c.session.Result()
	if !update.HasResult() {
		c.trySend(c.errorMessage(models.ErrNoResult.Error()))
		return
	}
	post, err := c.sharer.Compose(update.Result)
	if err != nil {
		c.trySend(c.errorMessage(err.Error()))
		return
	}
	c.trySend(ServerMessage{Type: MsgPost, SessionID: c.id, Post: &post})
}

// onUpdate runs under the session lock, so it only queues
func (c *liveClient) onUpdate(update session.Update) {
	c.trySend(c.stateMessage(MsgState, update))
}

func (c *liveClient) stateMessage(kind string, update session.Update) ServerMessage {
	state := update.State
	view := c.formatter.Render(state, update.Result, update.Err)
	msg := ServerMessage{
		Type:      kind,
		SessionID: c.id,
		Operation: update.Operation,
		State:     &state,
		View:      &view,
	}
	if update.Err != nil && !errors.Is(update.Err, models.ErrNoResult) {
		msg.Error = update.Err.Error()
	}
	return msg
}

func (c *liveClient) errorMessage(text string) ServerMessage {
	return ServerMessage{Type: MsgError, SessionID: c.id, Error: text}
}

// trySend queues a message, dropping it when the client is too slow
func (c *liveClient) trySend(msg ServerMessage) bool {
	select {
	case c.send <- msg:
		return true
	default:
		c.log.WithField("type", msg.Type).Warn("Send buffer full, dropping message")
		return false
	}
}
