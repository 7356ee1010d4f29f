package websocket

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrClientBehind is returned when a subscriber's outbox is full. The client is
// closed so the dashboard reconnects and reloads balances instead of showing a
// ledger with a payment missing.
var ErrClientBehind = errors.New("client fell behind on ledger events")

// Conn is the part of *websocket.Conn a Client drives
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Limits bounds a subscriber connection
type Limits struct {
	WriteWait  time.Duration
	PongWait   time.Duration
	PingPeriod time.Duration
	// Outbox is how many events may queue before the client counts as behind
	Outbox int
	// MaxInbound caps frames read from the browser, which only sends pongs
	MaxInbound int64
}

// DefaultLimits ping every 54s and drop peers silent for a minute
var DefaultLimits = Limits{
	WriteWait:  10 * time.Second,
	PongWait:   60 * time.Second,
	PingPeriod: 54 * time.Second,
	Outbox:     256,
	MaxInbound: 512,
}

// Client is one admin's subscription to a ledger channel
type Client struct {
	id       string
	channel  string
	memberID uuid.UUID
	conn     Conn
	hub      *Hub
	limits   Limits
	logger   zerolog.Logger

	outbox chan []byte
	done   chan struct{}
	stop   sync.Once
}

// NewClient subscribes memberID to channel over conn with DefaultLimits
func NewClient(conn Conn, channel string, memberID uuid.UUID, hub *Hub) *Client {
	return NewClientWithLimits(conn, channel, memberID, hub, DefaultLimits)
}

// NewClientWithLimits subscribes memberID to channel over conn
func NewClientWithLimits(conn Conn, channel string, memberID uuid.UUID, hub *Hub, limits Limits) *Client {
	id := uuid.New().String()
	return &Client{
		id:       id,
		channel:  channel,
		memberID: memberID,
		conn:     conn,
		hub:      hub,
		limits:   limits,
		logger: log.With().
			Str("client_id", id).
			Str("channel", channel).
			Str("member_id", memberID.String()).
			Logger(),
		outbox: make(chan []byte, limits.Outbox),
		done:   make(chan struct{}),
	}
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) Channel() string {
	return c.channel
}

// Send queues an encoded event for WritePump
func (c *Client) Send(data []byte) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	select {
	case c.outbox <- data:
		return nil
	default:
		c.logger.Warn().Int("outbox", c.limits.Outbox).Msg("WebSocket client behind, disconnecting")
		_ = c.Close()
		return ErrClientBehind
	}
}

// Close sends a going-away frame and drops the connection. Only the first call
// has any effect.
func (c *Client) Close() error {
	var err error
	c.stop.Do(func() {
		close(c.done)
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.limits.WriteWait))
		err = c.conn.Close()
	})
	return err
}

func (c *Client) IsClosed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// ReadPump keeps the read deadline moving on pongs and unregisters the client
// once the browser goes away. Run it in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.Close()
	}()

	c.conn.SetReadLimit(c.limits.MaxInbound)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.limits.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.limits.PongWait))
	})

	for {
		// the socket is push only, inbound frames are discarded
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("WebSocket unexpected close")
			}
			return
		}
	}
}

// WritePump delivers queued events in order and pings the browser. Run it in
// its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.limits.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.outbox:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.limits.WriteWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.logger.Warn().Err(err).Msg("WebSocket write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.limits.WriteWait)); err != nil {
				return
			}
		}
	}
}
