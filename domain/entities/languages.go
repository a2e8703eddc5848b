package entities

// Voice IDs used for speech synthesis, chosen per target language. The
// mapping is deterministic: English gets a dedicated voice, everything
// else shares the multilingual default.
const (
	EnglishVoiceID = "21m00Tcm4TlvDq8ikWAM" // Rachel
	DefaultVoiceID = "XB0fDUnXU5powFXDhCwa" // Charlotte, multilingual
)

// languageNames maps ISO 639-1 codes to the human-readable names fed to
// the translation prompt.
var languageNames = map[string]string{
	"sv": "Swedish",
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"nl": "Dutch",
	"no": "Norwegian",
	"da": "Danish",
	"fi": "Finnish",
	"pl": "Polish",
	"ru": "Russian",
	"uk": "Ukrainian",
	"ar": "Arabic",
	"tr": "Turkish",
	"zh": "Chinese",
	"ja": "Japanese",
	"ko": "Korean",
	"hi": "Hindi",
}

// LanguageName resolves a language code to its human-readable name.
// Unknown codes are returned as-is so the translation prompt still carries
// a usable hint.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}

// VoiceForLanguage picks the synthesis voice for a target language.
func VoiceForLanguage(toLang string) string {
	if toLang == "en" {
		return EnglishVoiceID
	}
	return DefaultVoiceID
}
