package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/AlexanderWiman/verlo-websocket/domain/entities"
)

// Client is a middleman between one websocket connection and the turn
// pipeline. Inbound frames are handled to completion, pipeline included,
// before the next frame is read, so at most one turn runs per connection.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound frames.
	send chan []byte

	// Connection ID for logging.
	connID string

	// Per-connection translation state, owned by readPump's goroutine.
	session *entities.Session

	logger *zap.Logger
}

func newClient(hub *Hub, conn *websocket.Conn, logger *zap.Logger) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, 256),
		connID:  uuid.NewString(),
		session: entities.NewSession(),
		logger:  logger,
	}
}

// readPump pumps messages from the websocket connection into the session.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps outbound frames to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage dispatches one inbound frame. A malformed frame or an
// unknown type is logged and ignored; the connection stays open.
func (c *Client) handleMessage(raw []byte) {
	msg, err := ParseInbound(raw)
	if err != nil {
		c.logger.Error("Failed to parse message", zap.Error(err))
		return
	}

	switch msg.Type {
	case MessageTypeStart:
		c.handleStart(msg)
	case MessageTypeChunk:
		c.session.AppendChunk(msg.Audio)
	case MessageTypeStop:
		c.runTurn()
	case MessageTypePing:
		c.sendJSON(NewPongMessage())
	default:
		c.logger.Warn("Unknown message type",
			zap.String("connID", c.connID),
			zap.String("type", string(msg.Type)))
	}
}

func (c *Client) handleStart(msg InboundMessage) {
	c.session.Start(msg.SessionID, msg.FromLang, msg.ToLang)
	c.logger.Info("Session started",
		zap.String("connID", c.connID),
		zap.String("sessionID", c.session.ID),
		zap.String("fromLang", c.session.FromLang),
		zap.String("toLang", c.session.ToLang))
	c.sendJSON(NewConnectedMessage(c.session.ID))
}

// runTurn drives one complete turn through the pipeline. Every failure is
// converted to a single error frame and the session goes back to idle,
// ready for a new start.
func (c *Client) runTurn() {
	if err := c.session.BeginProcessing(); err != nil {
		c.logger.Warn("Rejected stop",
			zap.String("connID", c.connID),
			zap.String("sessionID", c.session.ID),
			zap.Error(err))
		c.sendJSON(NewErrorMessage(err.Error()))
		return
	}
	defer c.session.FinishTurn()

	result, err := c.hub.pipeline.Run(context.Background(), c.session, (*turnEmitter)(c))
	if err != nil {
		c.logger.Error("Turn failed",
			zap.String("connID", c.connID),
			zap.String("sessionID", c.session.ID),
			zap.Error(err))
		c.sendJSON(NewErrorMessage(err.Error()))
		return
	}

	c.sendJSON(NewEndMessage(c.session.ID))
	c.logger.Info("Turn completed",
		zap.String("connID", c.connID),
		zap.String("sessionID", c.session.ID),
		zap.Bool("cacheHit", result.CacheHit))
}

func (c *Client) sendJSON(v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("Failed to marshal outbound message", zap.Error(err))
		return
	}

	// Block until writePump drains the buffer: dropping a frame here would
	// break the ordered delivery contract. The read loop is synchronous per
	// turn, so blocking cannot deadlock the connection; if the writer is
	// stalled past the write deadline the connection is torn down instead.
	select {
	case c.send <- payload:
	case <-time.After(writeWait):
		c.logger.Error("Send buffer stalled, closing connection",
			zap.String("connID", c.connID))
		c.conn.Close()
	}
}

// turnEmitter adapts the client's send path to the pipeline's event
// contract.
type turnEmitter Client

func (e *turnEmitter) Partial(text string) {
	(*Client)(e).sendJSON(PartialMessage{Type: MessageTypePartial, Text: text})
}

func (e *turnEmitter) Final(original, translated string, cached bool, fromLang, toLang string) {
	(*Client)(e).sendJSON(FinalMessage{
		Type:       MessageTypeFinal,
		Original:   original,
		Translated: translated,
		Cached:     cached,
		FromLang:   fromLang,
		ToLang:     toLang,
	})
}

func (e *turnEmitter) AudioChunk(url string, chunkIndex, totalChunks int) {
	(*Client)(e).sendJSON(AudioChunkMessage{
		Type:        MessageTypeAudioChunk,
		URL:         url,
		ChunkIndex:  chunkIndex,
		TotalChunks: totalChunks,
	})
}

func (e *turnEmitter) AudioComplete(totalChunks int) {
	(*Client)(e).sendJSON(AudioCompleteMessage{
		Type:        MessageTypeAudioComplete,
		TotalChunks: totalChunks,
	})
}
