package speech

import (
	"context"
	"strings"
)

// SynthesisRequest is a single text-to-speech call. Text must already fit
// the provider's input limits; see SplitText.
type SynthesisRequest struct {
	APIKey       string `json:"-"`
	Model        string `json:"model"`
	Text         string `json:"text"`
	Voice        string `json:"voice"`
	LanguageType string `json:"language_type,omitempty"`
}

// SynthesisResult points at the generated audio.
type SynthesisResult struct {
	AudioURL  string `json:"audio_url"`
	RequestID string `json:"request_id,omitempty"`
}

// Synthesizer is the provider surface the tts node depends on.
type Synthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error)
	// Fetch downloads generated audio.
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// DefaultVoice is used when a requested voice is not known.
const DefaultVoice = "Cherry"

var voices = []string{
	"Cherry", "Ethan", "Nofish", "Jennifer", "Ryan", "Katerina", "Elias",
	"Jada", "Dylan", "Sunny", "Li", "Marcus", "Roy", "Peter", "Rocky",
	"Kiki", "Eric", "Serena", "Chelsie",
}

// NormalizeVoice maps a case-insensitive voice name to its canonical
// spelling. The second result is false when the name is unknown and
// DefaultVoice was substituted.
func NormalizeVoice(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, v := range voices {
		if strings.EqualFold(v, name) {
			return v, true
		}
	}
	return DefaultVoice, false
}
