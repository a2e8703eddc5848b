package entities

import (
	"errors"
	"time"
)

// SessionState represents the lifecycle state of a translation session
type SessionState string

const (
	// SessionStateIdle means no turn is in progress
	SessionStateIdle SessionState = "idle"
	// SessionStateCollecting means the session is accumulating audio chunks
	SessionStateCollecting SessionState = "collecting"
	// SessionStateProcessing means a stop was received and the turn
	// pipeline is running
	SessionStateProcessing SessionState = "processing"
)

// Default language pair applied when a start message omits the codes.
// Matches the behavior the clients rely on.
const (
	DefaultFromLang = "sv"
	DefaultToLang   = "en"
)

var (
	// ErrNoAudio is returned when a turn starts without any buffered audio
	ErrNoAudio = errors.New("no audio chunks collected")
	// ErrTurnInProgress is returned when a stop arrives while a turn is
	// already being processed
	ErrTurnInProgress = errors.New("turn already in progress")
)

// Session owns the per-connection translation state. It is mutated only by
// the goroutine serving its connection, so it carries no locking. Sessions
// are created when a connection opens and discarded when it closes; they
// are never persisted.
type Session struct {
	ID          string
	FromLang    string
	ToLang      string
	State       SessionState
	StartedAt   time.Time
	audioChunks []string
}

// NewSession creates an idle session for a freshly opened connection.
func NewSession() *Session {
	return &Session{
		State:     SessionStateIdle,
		StartedAt: time.Now(),
	}
}

// Start resets the session for a new turn. Valid in any state: a start
// while collecting simply discards the buffered audio, and a start after a
// completed turn begins the next one. Missing language codes fall back to
// the defaults.
func (s *Session) Start(sessionID, fromLang, toLang string) {
	if fromLang == "" {
		fromLang = DefaultFromLang
	}
	if toLang == "" {
		toLang = DefaultToLang
	}

	s.ID = sessionID
	s.FromLang = fromLang
	s.ToLang = toLang
	s.audioChunks = s.audioChunks[:0]
	s.State = SessionStateCollecting
}

// AppendChunk buffers one base64 audio fragment in receipt order. Chunks
// arriving outside Collecting are accepted rather than rejected; real
// clients occasionally send a trailing chunk after stop.
func (s *Session) AppendChunk(audio string) {
	s.audioChunks = append(s.audioChunks, audio)
}

// BeginProcessing transitions the session into Processing. It fails when
// no audio was collected or when a turn is already running.
func (s *Session) BeginProcessing() error {
	if s.State == SessionStateProcessing {
		return ErrTurnInProgress
	}
	if len(s.audioChunks) == 0 {
		return ErrNoAudio
	}
	s.State = SessionStateProcessing
	return nil
}

// FinishTurn returns the session to Idle after the pipeline completes or
// fails, leaving it ready for a new start.
func (s *Session) FinishTurn() {
	s.State = SessionStateIdle
}

// AudioChunks returns the buffered fragments in receipt order.
func (s *Session) AudioChunks() []string {
	return s.audioChunks
}

// ChunkCount reports how many fragments are buffered.
func (s *Session) ChunkCount() int {
	return len(s.audioChunks)
}
