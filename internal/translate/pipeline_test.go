package translate

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/AlexanderWiman/verlo-websocket/adapters/cache"
	"github.com/AlexanderWiman/verlo-websocket/adapters/llm"
	"github.com/AlexanderWiman/verlo-websocket/adapters/stt"
	"github.com/AlexanderWiman/verlo-websocket/adapters/tts"
	"github.com/AlexanderWiman/verlo-websocket/domain/entities"
)

// eventRecorder captures the pipeline's outbound events in emission order.
type eventRecorder struct {
	order     []string
	partials  []string
	finals    []recordedFinal
	chunks    []recordedChunk
	completes []int
}

type recordedFinal struct {
	original   string
	translated string
	cached     bool
	fromLang   string
	toLang     string
}

type recordedChunk struct {
	url         string
	chunkIndex  int
	totalChunks int
}

func (r *eventRecorder) Partial(text string) {
	r.order = append(r.order, "partial")
	r.partials = append(r.partials, text)
}

func (r *eventRecorder) Final(original, translated string, cached bool, fromLang, toLang string) {
	r.order = append(r.order, "final")
	r.finals = append(r.finals, recordedFinal{original, translated, cached, fromLang, toLang})
}

func (r *eventRecorder) AudioChunk(url string, chunkIndex, totalChunks int) {
	r.order = append(r.order, "audio_chunk")
	r.chunks = append(r.chunks, recordedChunk{url, chunkIndex, totalChunks})
}

func (r *eventRecorder) AudioComplete(totalChunks int) {
	r.order = append(r.order, "audio_complete")
	r.completes = append(r.completes, totalChunks)
}

// failingCache errors on every operation so degradation paths can be
// exercised.
type failingCache struct{}

func (failingCache) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("cache unreachable")
}

func (failingCache) Set(context.Context, string, string, time.Duration) error {
	return errors.New("cache unreachable")
}

func validAudioChunk() string {
	return base64.StdEncoding.EncodeToString([]byte("fake-audio-bytes"))
}

func newTestSession(t *testing.T, chunks ...string) *entities.Session {
	t.Helper()
	session := entities.NewSession()
	session.Start("s1", "sv", "en")
	for _, chunk := range chunks {
		session.AppendChunk(chunk)
	}
	return session
}

func TestPipelineCacheMissThenHit(t *testing.T) {
	sttMock := &stt.MockSpeechToText{Transcript: "hej"}
	llmMock := &llm.MockTranslator{Translation: "hello"}
	ttsMock := &tts.MockTextToSpeech{}
	memCache := cache.NewMemoryCache()

	pipeline := NewPipeline(sttMock, llmMock, ttsMock, memCache, zap.NewNop(), WithTempDir(t.TempDir()))

	recorder := &eventRecorder{}
	session := newTestSession(t, validAudioChunk())
	result, err := pipeline.Run(context.Background(), session, recorder)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.CacheHit {
		t.Error("First turn should be a cache miss")
	}
	if llmMock.Calls() != 1 {
		t.Errorf("Translator should be invoked exactly once, got %d", llmMock.Calls())
	}
	if len(recorder.finals) != 1 || recorder.finals[0].cached {
		t.Errorf("Expected one uncached final, got %+v", recorder.finals)
	}

	// The cache write is asynchronous; wait for it to land.
	deadline := time.Now().Add(2 * time.Second)
	for memCache.Len() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Cache entry never written")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// An identical second turn must be served from the cache.
	recorder2 := &eventRecorder{}
	session2 := newTestSession(t, validAudioChunk())
	result2, err := pipeline.Run(context.Background(), session2, recorder2)
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}

	if !result2.CacheHit {
		t.Error("Second turn should be a cache hit")
	}
	if llmMock.Calls() != 1 {
		t.Errorf("Translator should not be invoked again, got %d calls", llmMock.Calls())
	}
	if len(recorder2.finals) != 1 || !recorder2.finals[0].cached {
		t.Errorf("Expected one cached final, got %+v", recorder2.finals)
	}
	if result2.TranslatedText != "hello" {
		t.Errorf("Cached translation mismatch: %q", result2.TranslatedText)
	}
}

func TestPipelineCacheHitSkipsTranslator(t *testing.T) {
	sttMock := &stt.MockSpeechToText{Transcript: "hej"}
	llmMock := &llm.MockTranslator{}
	ttsMock := &tts.MockTextToSpeech{}
	memCache := cache.NewMemoryCache()

	key := CacheKey("sv", "en", "hej")
	if err := memCache.Set(context.Background(), key, "hello", time.Hour); err != nil {
		t.Fatalf("Seeding cache failed: %v", err)
	}

	pipeline := NewPipeline(sttMock, llmMock, ttsMock, memCache, zap.NewNop(), WithTempDir(t.TempDir()))

	recorder := &eventRecorder{}
	result, err := pipeline.Run(context.Background(), newTestSession(t, validAudioChunk()), recorder)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !result.CacheHit {
		t.Error("Expected a cache hit")
	}
	if llmMock.Calls() != 0 {
		t.Errorf("Translator must never be invoked on a hit, got %d calls", llmMock.Calls())
	}
	if result.TranslatedText != "hello" {
		t.Errorf("Expected cached translation, got %q", result.TranslatedText)
	}
}

func TestPipelineEventOrder(t *testing.T) {
	sttMock := &stt.MockSpeechToText{Transcript: "hej hur mår du idag min vän"}
	llmMock := &llm.MockTranslator{Translation: "hello how are you today my friend it is a lovely day"}
	ttsMock := &tts.MockTextToSpeech{}

	pipeline := NewPipeline(sttMock, llmMock, ttsMock, cache.NewMemoryCache(), zap.NewNop(),
		WithTempDir(t.TempDir()), WithMaxFragmentLen(20))

	recorder := &eventRecorder{}
	if _, err := pipeline.Run(context.Background(), newTestSession(t, validAudioChunk()), recorder); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(recorder.order) < 4 {
		t.Fatalf("Too few events: %v", recorder.order)
	}
	if recorder.order[0] != "partial" {
		t.Errorf("First event should be partial, got %s", recorder.order[0])
	}
	if recorder.order[1] != "final" {
		t.Errorf("Second event should be final, got %s", recorder.order[1])
	}
	for _, kind := range recorder.order[2 : len(recorder.order)-1] {
		if kind != "audio_chunk" {
			t.Errorf("Expected audio_chunk, got %s", kind)
		}
	}
	if last := recorder.order[len(recorder.order)-1]; last != "audio_complete" {
		t.Errorf("Last event should be audio_complete, got %s", last)
	}
}

func TestPipelineEmitsChunksInIndexOrder(t *testing.T) {
	sttMock := &stt.MockSpeechToText{Transcript: "hej"}
	llmMock := &llm.MockTranslator{Translation: "alpha beta gamma delta epsilon zeta eta theta"}

	// Earlier fragments finish last: completion order is the reverse of
	// index order.
	ttsMock := &tts.MockTextToSpeech{
		SynthesizeFunc: func(ctx context.Context, text, voiceID string) ([]byte, error) {
			if strings.HasPrefix(text, "alpha") {
				time.Sleep(60 * time.Millisecond)
			} else if strings.HasPrefix(text, "gamma") {
				time.Sleep(30 * time.Millisecond)
			}
			return []byte(text), nil
		},
	}

	pipeline := NewPipeline(sttMock, llmMock, ttsMock, cache.NewMemoryCache(), zap.NewNop(),
		WithTempDir(t.TempDir()), WithMaxFragmentLen(12))

	recorder := &eventRecorder{}
	if _, err := pipeline.Run(context.Background(), newTestSession(t, validAudioChunk()), recorder); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(recorder.chunks) < 3 {
		t.Fatalf("Expected at least 3 chunks, got %d", len(recorder.chunks))
	}
	for i, chunk := range recorder.chunks {
		if chunk.chunkIndex != i {
			t.Errorf("Chunk %d delivered with index %d", i, chunk.chunkIndex)
		}
		if chunk.totalChunks != len(recorder.chunks) {
			t.Errorf("Chunk %d reports total %d, want %d", i, chunk.totalChunks, len(recorder.chunks))
		}
		if !strings.HasPrefix(chunk.url, "data:audio/mp3;base64,") {
			t.Errorf("Chunk %d URL is not a data URL: %q", i, chunk.url)
		}
	}
	if len(recorder.completes) != 1 || recorder.completes[0] != len(recorder.chunks) {
		t.Errorf("audio_complete mismatch: %v", recorder.completes)
	}
}

func TestPipelineAssemblesIndependentlyEncodedChunks(t *testing.T) {
	// Each chunk is a complete base64 blob carrying its own padding; the
	// assembled audio must be the decoded bytes concatenated in receipt
	// order.
	first := []byte("0123456789abcdef")
	second := []byte("fedcba9876543210")

	var received []byte
	sttMock := &stt.MockSpeechToText{
		TranscribeFunc: func(ctx context.Context, audioData []byte, languageCode string) (string, error) {
			received = append([]byte(nil), audioData...)
			return "hej", nil
		},
	}
	pipeline := NewPipeline(sttMock, &llm.MockTranslator{Translation: "hello"}, &tts.MockTextToSpeech{},
		cache.NewMemoryCache(), zap.NewNop(), WithTempDir(t.TempDir()))

	session := newTestSession(t,
		base64.StdEncoding.EncodeToString(first),
		base64.StdEncoding.EncodeToString(second),
	)
	if _, err := pipeline.Run(context.Background(), session, &eventRecorder{}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := append(append([]byte(nil), first...), second...)
	if !bytes.Equal(received, want) {
		t.Errorf("Assembled audio mismatch: got %q, want %q", received, want)
	}
}

func TestPipelineAdapterDeadlinePromotedToTimeout(t *testing.T) {
	// The provider reports the expiry in its own terms without wrapping the
	// context error, the way gRPC status errors do.
	sttMock := &stt.MockSpeechToText{
		TranscribeFunc: func(ctx context.Context, audioData []byte, languageCode string) (string, error) {
			<-ctx.Done()
			return "", errors.New("rpc error: code = DeadlineExceeded desc = deadline exceeded")
		},
	}
	pipeline := NewPipeline(sttMock, &llm.MockTranslator{}, &tts.MockTextToSpeech{},
		cache.NewMemoryCache(), zap.NewNop(), WithTempDir(t.TempDir()),
		WithAdapterTimeout(20*time.Millisecond))

	_, err := pipeline.Run(context.Background(), newTestSession(t, validAudioChunk()), &eventRecorder{})

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("Expected TimeoutError, got %v", err)
	}
	if timeoutErr.Stage != "transcription" {
		t.Errorf("Expected transcription stage, got %q", timeoutErr.Stage)
	}
}

func TestPipelineEmptyAudioIsTerminal(t *testing.T) {
	pipeline := NewPipeline(&stt.MockSpeechToText{}, &llm.MockTranslator{}, &tts.MockTextToSpeech{},
		cache.NewMemoryCache(), zap.NewNop(), WithTempDir(t.TempDir()))

	session := entities.NewSession()
	session.Start("s1", "sv", "en")

	_, err := pipeline.Run(context.Background(), session, &eventRecorder{})

	var decodeErr *AudioDecodeError
	if !errors.As(err, &decodeErr) {
		t.Errorf("Expected AudioDecodeError, got %v", err)
	}
}

func TestPipelineUndecodableAudioIsTerminal(t *testing.T) {
	pipeline := NewPipeline(&stt.MockSpeechToText{}, &llm.MockTranslator{}, &tts.MockTextToSpeech{},
		cache.NewMemoryCache(), zap.NewNop(), WithTempDir(t.TempDir()))

	recorder := &eventRecorder{}
	_, err := pipeline.Run(context.Background(), newTestSession(t, "not base64 at all!!!"), recorder)

	var decodeErr *AudioDecodeError
	if !errors.As(err, &decodeErr) {
		t.Errorf("Expected AudioDecodeError, got %v", err)
	}
	if len(recorder.order) != 0 {
		t.Errorf("No events should be emitted on decode failure, got %v", recorder.order)
	}
}

func TestPipelineStripsDataURLPrefix(t *testing.T) {
	sttMock := &stt.MockSpeechToText{Transcript: "hej"}
	pipeline := NewPipeline(sttMock, &llm.MockTranslator{}, &tts.MockTextToSpeech{},
		cache.NewMemoryCache(), zap.NewNop(), WithTempDir(t.TempDir()))

	chunk := "data:audio/webm;base64," + validAudioChunk()
	if _, err := pipeline.Run(context.Background(), newTestSession(t, chunk), &eventRecorder{}); err != nil {
		t.Fatalf("Run failed for data-URL chunk: %v", err)
	}
}

func TestPipelineEmptyTranscriptIsTerminal(t *testing.T) {
	sttMock := &stt.MockSpeechToText{Transcript: "   "}
	pipeline := NewPipeline(sttMock, &llm.MockTranslator{}, &tts.MockTextToSpeech{},
		cache.NewMemoryCache(), zap.NewNop(), WithTempDir(t.TempDir()))

	recorder := &eventRecorder{}
	_, err := pipeline.Run(context.Background(), newTestSession(t, validAudioChunk()), recorder)

	var transcriptionErr *TranscriptionError
	if !errors.As(err, &transcriptionErr) {
		t.Errorf("Expected TranscriptionError, got %v", err)
	}
	if len(recorder.partials) != 0 {
		t.Error("No partial should be emitted for an empty transcript")
	}
}

func TestPipelineTranslationFailureIsTerminal(t *testing.T) {
	sttMock := &stt.MockSpeechToText{Transcript: "hej"}
	llmMock := &llm.MockTranslator{Err: errors.New("provider down")}
	pipeline := NewPipeline(sttMock, llmMock, &tts.MockTextToSpeech{},
		cache.NewMemoryCache(), zap.NewNop(), WithTempDir(t.TempDir()))

	recorder := &eventRecorder{}
	_, err := pipeline.Run(context.Background(), newTestSession(t, validAudioChunk()), recorder)

	var translationErr *TranslationError
	if !errors.As(err, &translationErr) {
		t.Errorf("Expected TranslationError, got %v", err)
	}
	if len(recorder.partials) != 1 {
		t.Error("Partial should still be emitted before translation fails")
	}
	if len(recorder.finals) != 0 {
		t.Error("No final should be emitted when translation fails")
	}
}

func TestPipelineSynthesisFailureIsTerminal(t *testing.T) {
	sttMock := &stt.MockSpeechToText{Transcript: "hej"}
	ttsMock := &tts.MockTextToSpeech{Err: errors.New("voice service down")}
	pipeline := NewPipeline(sttMock, &llm.MockTranslator{Translation: "hello"}, ttsMock,
		cache.NewMemoryCache(), zap.NewNop(), WithTempDir(t.TempDir()))

	recorder := &eventRecorder{}
	_, err := pipeline.Run(context.Background(), newTestSession(t, validAudioChunk()), recorder)

	var synthesisErr *SynthesisError
	if !errors.As(err, &synthesisErr) {
		t.Errorf("Expected SynthesisError, got %v", err)
	}
	if len(recorder.finals) != 1 {
		t.Error("Final should be emitted before synthesis fails")
	}
	if len(recorder.chunks) != 0 {
		t.Error("No audio chunks should be emitted when synthesis fails")
	}
}

func TestPipelineSurvivesUnreachableCache(t *testing.T) {
	sttMock := &stt.MockSpeechToText{Transcript: "hej"}
	llmMock := &llm.MockTranslator{Translation: "hello"}
	pipeline := NewPipeline(sttMock, llmMock, &tts.MockTextToSpeech{},
		failingCache{}, zap.NewNop(), WithTempDir(t.TempDir()))

	recorder := &eventRecorder{}
	result, err := pipeline.Run(context.Background(), newTestSession(t, validAudioChunk()), recorder)
	if err != nil {
		t.Fatalf("Turn must succeed without the cache: %v", err)
	}

	if result.CacheHit {
		t.Error("Unreachable cache should read as a miss")
	}
	if llmMock.Calls() != 1 {
		t.Errorf("Translator should run on cache failure, got %d calls", llmMock.Calls())
	}
}

func TestPipelineCleansUpTempAudio(t *testing.T) {
	tempDir := t.TempDir()

	sttMock := &stt.MockSpeechToText{Transcript: "hej"}
	pipeline := NewPipeline(sttMock, &llm.MockTranslator{}, &tts.MockTextToSpeech{},
		cache.NewMemoryCache(), zap.NewNop(), WithTempDir(tempDir))

	if _, err := pipeline.Run(context.Background(), newTestSession(t, validAudioChunk()), &eventRecorder{}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	assertDirEmpty(t, tempDir)

	// The error path must clean up too.
	sttMock.Transcript = ""
	sttMock.Err = fmt.Errorf("recognizer offline")
	if _, err := pipeline.Run(context.Background(), newTestSession(t, validAudioChunk()), &eventRecorder{}); err == nil {
		t.Fatal("Expected transcription failure")
	}

	assertDirEmpty(t, tempDir)
}

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read temp dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Temp dir should be empty, found %d entries", len(entries))
	}
}
