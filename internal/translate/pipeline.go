package translate

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AlexanderWiman/verlo-websocket/domain/entities"
	"github.com/AlexanderWiman/verlo-websocket/domain/repositories"
)

const (
	defaultAdapterTimeout = 30 * time.Second
	cacheOpTimeout        = 2 * time.Second
)

// TurnEvents receives the ordered outbound events of one translation turn.
// The pipeline calls these strictly in the contracted order: Partial once,
// Final once, AudioChunk for indexes 0..N-1, then AudioComplete.
type TurnEvents interface {
	Partial(text string)
	Final(original, translated string, cached bool, fromLang, toLang string)
	AudioChunk(url string, chunkIndex, totalChunks int)
	AudioComplete(totalChunks int)
}

// TurnResult summarizes one completed turn.
type TurnResult struct {
	OriginalText   string
	TranslatedText string
	CacheHit       bool
}

// Pipeline orchestrates one translation turn: assemble audio, transcribe,
// consult the cache, translate on a miss, synthesize fragments
// concurrently and deliver them in index order. It holds no per-turn
// state, so one Pipeline serves every connection.
type Pipeline struct {
	stt        repositories.SpeechToText
	translator repositories.Translator
	tts        repositories.TextToSpeech
	cache      repositories.TranslationCache
	logger     *zap.Logger

	maxFragmentLen int
	adapterTimeout time.Duration
	tempDir        string
}

// PipelineOption customizes a Pipeline.
type PipelineOption func(*Pipeline)

// WithMaxFragmentLen overrides the synthesis fragment bound.
func WithMaxFragmentLen(n int) PipelineOption {
	return func(p *Pipeline) { p.maxFragmentLen = n }
}

// WithAdapterTimeout overrides the per-call deadline for remote adapters.
func WithAdapterTimeout(d time.Duration) PipelineOption {
	return func(p *Pipeline) { p.adapterTimeout = d }
}

// WithTempDir overrides where decoded audio is staged before transcription.
func WithTempDir(dir string) PipelineOption {
	return func(p *Pipeline) { p.tempDir = dir }
}

// NewPipeline wires a turn pipeline from the four provider adapters.
func NewPipeline(
	stt repositories.SpeechToText,
	translator repositories.Translator,
	tts repositories.TextToSpeech,
	cache repositories.TranslationCache,
	logger *zap.Logger,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		stt:            stt,
		translator:     translator,
		tts:            tts,
		cache:          cache,
		logger:         logger,
		maxFragmentLen: DefaultMaxFragmentLen,
		adapterTimeout: defaultAdapterTimeout,
		tempDir:        os.TempDir(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one turn for the given session. Any returned error is
// terminal for the turn only; the caller reports it and the session goes
// back to idle. The cache is consulted and populated best-effort and never
// fails a turn.
func (p *Pipeline) Run(ctx context.Context, session *entities.Session, events TurnEvents) (*TurnResult, error) {
	audio, err := assembleAudio(session.AudioChunks())
	if err != nil {
		return nil, err
	}

	originalText, err := p.transcribe(ctx, session, audio)
	if err != nil {
		return nil, err
	}
	events.Partial(originalText)

	translatedText, cacheHit := p.lookupTranslation(ctx, session, originalText)
	if !cacheHit {
		translatedText, err = p.translate(ctx, session, originalText)
		if err != nil {
			return nil, err
		}
		p.storeTranslation(session, originalText, translatedText)
	}
	events.Final(originalText, translatedText, cacheHit, session.FromLang, session.ToLang)

	if err := p.synthesize(ctx, session, translatedText, events); err != nil {
		return nil, err
	}

	return &TurnResult{
		OriginalText:   originalText,
		TranslatedText: translatedText,
		CacheHit:       cacheHit,
	}, nil
}

// assembleAudio decodes the buffered base64 fragments in receipt order
// and concatenates the resulting bytes. Each chunk is an independently
// complete base64 blob, padding included, so decoding happens per chunk;
// any data-URL prefix is stripped first.
func assembleAudio(chunks []string) ([]byte, error) {
	if len(chunks) == 0 {
		return nil, &AudioDecodeError{Err: errors.New("no audio chunks collected")}
	}

	var audio []byte
	for i, chunk := range chunks {
		decoded, err := base64.StdEncoding.DecodeString(stripDataURLPrefix(chunk))
		if err != nil {
			return nil, &AudioDecodeError{Err: fmt.Errorf("chunk %d: invalid base64 payload: %w", i, err)}
		}
		audio = append(audio, decoded...)
	}
	if len(audio) == 0 {
		return nil, &AudioDecodeError{Err: errors.New("decoded audio is empty")}
	}
	return audio, nil
}

func stripDataURLPrefix(payload string) string {
	if !strings.HasPrefix(payload, "data:") {
		return payload
	}
	if idx := strings.Index(payload, ","); idx >= 0 {
		return payload[idx+1:]
	}
	return payload
}

// transcribe stages the decoded audio in a temp file for the duration of
// the recognition call. The file is removed unconditionally, error path
// included, so turns never leak temp entries.
func (p *Pipeline) transcribe(ctx context.Context, session *entities.Session, audio []byte) (string, error) {
	tempPath := filepath.Join(p.tempDir, fmt.Sprintf("turn-%s.webm", uuid.NewString()))
	if err := os.WriteFile(tempPath, audio, 0o600); err != nil {
		p.logger.Warn("Failed to stage audio to temp file",
			zap.String("sessionID", session.ID),
			zap.Error(err))
	} else {
		defer os.Remove(tempPath)
	}

	callCtx, cancel := context.WithTimeout(ctx, p.adapterTimeout)
	defer cancel()

	text, err := p.stt.TranscribeAudio(callCtx, audio, session.FromLang)
	if err != nil {
		return "", stageError("transcription", promoteDeadline(callCtx, err), func(err error) error {
			return &TranscriptionError{Err: err}
		})
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", &TranscriptionError{Err: errors.New("No text transcribed from audio")}
	}

	p.logger.Info("Transcription completed",
		zap.String("sessionID", session.ID),
		zap.String("fromLang", session.FromLang),
		zap.Int("textLength", len(text)))
	return text, nil
}

// lookupTranslation consults the cache. Errors degrade to a miss.
func (p *Pipeline) lookupTranslation(ctx context.Context, session *entities.Session, originalText string) (string, bool) {
	key := CacheKey(session.FromLang, session.ToLang, originalText)

	callCtx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()

	value, found, err := p.cache.Get(callCtx, key)
	if err != nil {
		p.logger.Warn("Cache read failed, treating as miss",
			zap.String("key", key),
			zap.Error(err))
		return "", false
	}
	if found {
		p.logger.Info("Cache hit",
			zap.String("sessionID", session.ID),
			zap.String("key", key))
	}
	return value, found
}

func (p *Pipeline) translate(ctx context.Context, session *entities.Session, originalText string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.adapterTimeout)
	defer cancel()

	translated, err := p.translator.Translate(
		callCtx,
		originalText,
		entities.LanguageName(session.FromLang),
		entities.LanguageName(session.ToLang),
	)
	if err != nil {
		return "", stageError("translation", promoteDeadline(callCtx, err), func(err error) error {
			return &TranslationError{Err: err}
		})
	}
	return strings.TrimSpace(translated), nil
}

// storeTranslation writes the new entry asynchronously. A failed write is
// logged and dropped, never surfaced to the turn.
func (p *Pipeline) storeTranslation(session *entities.Session, originalText, translatedText string) {
	key := CacheKey(session.FromLang, session.ToLang, originalText)
	ttl := CacheTTL(originalText)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
		defer cancel()

		if err := p.cache.Set(ctx, key, translatedText, ttl); err != nil {
			p.logger.Warn("Cache write failed, dropping entry",
				zap.String("key", key),
				zap.Error(err))
		}
	}()
}

// synthesize splits the translated text into bounded fragments, renders
// them all concurrently, then emits the results strictly in index order.
// Total latency is bounded by the slowest fragment, and no fragment is
// delivered before every fragment is ready.
func (p *Pipeline) synthesize(ctx context.Context, session *entities.Session, translatedText string, events TurnEvents) error {
	fragments := SplitText(translatedText, p.maxFragmentLen)
	if len(fragments) == 0 {
		return &SynthesisError{Err: errors.New("nothing to synthesize")}
	}

	voiceID := entities.VoiceForLanguage(session.ToLang)

	results := make([][]byte, len(fragments))
	errs := make([]error, len(fragments))

	var wg sync.WaitGroup
	for i, fragment := range fragments {
		wg.Add(1)
		go func(i int, fragment string) {
			defer wg.Done()

			callCtx, cancel := context.WithTimeout(ctx, p.adapterTimeout)
			defer cancel()

			result, err := p.tts.Synthesize(callCtx, fragment, voiceID)
			results[i], errs[i] = result, promoteDeadline(callCtx, err)
		}(i, fragment)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return stageError("synthesis", fmt.Errorf("fragment %d: %w", i, err), func(err error) error {
				return &SynthesisError{Err: err}
			})
		}
	}

	for i, audio := range results {
		url := "data:audio/mp3;base64," + base64.StdEncoding.EncodeToString(audio)
		events.AudioChunk(url, i, len(fragments))
	}
	events.AudioComplete(len(fragments))

	p.logger.Info("Synthesis completed",
		zap.String("sessionID", session.ID),
		zap.String("voiceID", voiceID),
		zap.Int("fragments", len(fragments)))
	return nil
}
