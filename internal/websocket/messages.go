package websocket

import "encoding/json"

// MessageType defines the type of WebSocket message
type MessageType string

// Inbound message types (client to server)
const (
	MessageTypeStart MessageType = "start"
	MessageTypeChunk MessageType = "chunk"
	MessageTypeStop  MessageType = "stop"
	MessageTypePing  MessageType = "ping"
)

// Outbound message types (server to client)
const (
	MessageTypeConnected     MessageType = "connected"
	MessageTypePartial       MessageType = "partial"
	MessageTypeFinal         MessageType = "final"
	MessageTypeAudioChunk    MessageType = "audio_chunk"
	MessageTypeAudioComplete MessageType = "audio_complete"
	MessageTypeEnd           MessageType = "end"
	MessageTypeError         MessageType = "error"
	MessageTypePong          MessageType = "pong"
)

// InboundMessage is the envelope for all client frames. One type field
// dispatches; unused fields stay empty for the other kinds.
type InboundMessage struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	FromLang  string      `json:"fromLang,omitempty"`
	ToLang    string      `json:"toLang,omitempty"`
	Audio     string      `json:"audio,omitempty"`
}

// ParseInbound decodes a raw client frame.
func ParseInbound(raw []byte) (InboundMessage, error) {
	var msg InboundMessage
	err := json.Unmarshal(raw, &msg)
	return msg, err
}

// ConnectedMessage acknowledges a start frame.
type ConnectedMessage struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"sessionId"`
}

// PartialMessage carries the transcript before translation completes.
type PartialMessage struct {
	Type MessageType `json:"type"`
	Text string      `json:"text"`
}

// FinalMessage carries the completed translation for one turn.
type FinalMessage struct {
	Type       MessageType `json:"type"`
	Original   string      `json:"original"`
	Translated string      `json:"translated"`
	Cached     bool        `json:"cached"`
	FromLang   string      `json:"fromLang"`
	ToLang     string      `json:"toLang"`
}

// AudioChunkMessage carries one synthesized fragment as a data URL.
type AudioChunkMessage struct {
	Type        MessageType `json:"type"`
	URL         string      `json:"url"`
	ChunkIndex  int         `json:"chunkIndex"`
	TotalChunks int         `json:"totalChunks"`
}

// AudioCompleteMessage closes out chunked audio delivery.
type AudioCompleteMessage struct {
	Type        MessageType `json:"type"`
	TotalChunks int         `json:"totalChunks"`
}

// EndMessage closes out one turn.
type EndMessage struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"sessionId"`
}

// ErrorMessage reports a turn-level failure. The connection stays open.
type ErrorMessage struct {
	Type  MessageType `json:"type"`
	Error string      `json:"error"`
}

// PongMessage replies to an application-level ping.
type PongMessage struct {
	Type MessageType `json:"type"`
}

// NewConnectedMessage creates a connected acknowledgment.
func NewConnectedMessage(sessionID string) ConnectedMessage {
	return ConnectedMessage{Type: MessageTypeConnected, SessionID: sessionID}
}

// NewErrorMessage creates a turn error frame.
func NewErrorMessage(message string) ErrorMessage {
	return ErrorMessage{Type: MessageTypeError, Error: message}
}

// NewEndMessage creates a turn end frame.
func NewEndMessage(sessionID string) EndMessage {
	return EndMessage{Type: MessageTypeEnd, SessionID: sessionID}
}

// NewPongMessage creates a pong reply.
func NewPongMessage() PongMessage {
	return PongMessage{Type: MessageTypePong}
}
