package stt

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"

	"github.com/AlexanderWiman/verlo-websocket/domain/repositories"
)

const (
	defaultSampleRate = 48000
	defaultEncoding   = "WEBM_OPUS" // browser MediaRecorder default
)

// GoogleConfig holds configuration for the Google Cloud recognizer.
// Optional fields with defaults:
// - SampleRate: audio sample rate in Hz (default 48000)
// - Encoding: audio encoding name (default "WEBM_OPUS")
type GoogleConfig struct {
	SampleRate int
	Encoding   string
}

// GoogleSpeechToText implements SpeechToText using Google Cloud
// Speech-to-Text batch recognition.
type GoogleSpeechToText struct {
	sampleRate int
	encoding   string
	logger     *zap.Logger
}

var _ repositories.SpeechToText = (*GoogleSpeechToText)(nil)

// NewGoogleSpeechToText creates a Google Cloud recognizer. Credentials are
// resolved by the client library from the environment.
func NewGoogleSpeechToText(config GoogleConfig, logger *zap.Logger) *GoogleSpeechToText {
	sampleRate := config.SampleRate
	if sampleRate == 0 {
		sampleRate = defaultSampleRate
	}

	encoding := config.Encoding
	if encoding == "" {
		encoding = defaultEncoding
	}

	return &GoogleSpeechToText{
		sampleRate: sampleRate,
		encoding:   encoding,
		logger:     logger,
	}
}

// TranscribeAudio converts an assembled audio blob to text. The language
// code is widened to a BCP-47 tag where a canonical region is known.
func (g *GoogleSpeechToText) TranscribeAudio(ctx context.Context, audioData []byte, languageCode string) (string, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create speech client: %w", err)
	}
	defer client.Close()

	encoding, err := audioEncoding(g.encoding)
	if err != nil {
		return "", err
	}

	resp, err := client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        encoding,
			SampleRateHertz: int32(g.sampleRate),
			LanguageCode:    recognitionLanguage(languageCode),
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audioData},
		},
	})
	if err != nil {
		return "", fmt.Errorf("recognize request failed: %w", err)
	}

	var transcript strings.Builder
	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		if transcript.Len() > 0 {
			transcript.WriteByte(' ')
		}
		transcript.WriteString(result.Alternatives[0].Transcript)
	}

	g.logger.Debug("Recognition response processed",
		zap.Int("results", len(resp.Results)),
		zap.Int("transcriptLength", transcript.Len()))

	return transcript.String(), nil
}

// recognitionLanguage widens a bare ISO 639-1 code to the regional tag
// Google expects. Unknown codes pass through unchanged.
func recognitionLanguage(code string) string {
	regions := map[string]string{
		"sv": "sv-SE",
		"en": "en-US",
		"es": "es-ES",
		"fr": "fr-FR",
		"de": "de-DE",
		"it": "it-IT",
		"pt": "pt-PT",
		"nl": "nl-NL",
		"no": "nb-NO",
		"da": "da-DK",
		"fi": "fi-FI",
		"pl": "pl-PL",
		"ru": "ru-RU",
		"uk": "uk-UA",
		"ar": "ar-SA",
		"tr": "tr-TR",
		"zh": "cmn-Hans-CN",
		"ja": "ja-JP",
		"ko": "ko-KR",
		"hi": "hi-IN",
	}
	if tag, ok := regions[code]; ok {
		return tag
	}
	return code
}

// audioEncoding converts a string encoding name to the Speech API enum.
func audioEncoding(encoding string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch encoding {
	case "WAV", "LINEAR16":
		return speechpb.RecognitionConfig_LINEAR16, nil
	case "FLAC":
		return speechpb.RecognitionConfig_FLAC, nil
	case "MULAW":
		return speechpb.RecognitionConfig_MULAW, nil
	case "OGG_OPUS":
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	case "WEBM_OPUS":
		return speechpb.RecognitionConfig_WEBM_OPUS, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, fmt.Errorf("unsupported encoding: %s", encoding)
	}
}

// NewGoogleConfigFromEnv creates a GoogleConfig from environment variables.
func NewGoogleConfigFromEnv() GoogleConfig {
	config := GoogleConfig{
		Encoding: os.Getenv("GOOGLE_STT_ENCODING"),
	}

	if rateStr := os.Getenv("GOOGLE_STT_SAMPLE_RATE"); rateStr != "" {
		if rate, err := strconv.Atoi(rateStr); err == nil && rate > 0 {
			config.SampleRate = rate
		}
	}

	return config
}
