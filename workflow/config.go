package workflow

import (
	"encoding/json"
	"strings"

	"github.com/kbukum/paiflow/errors"
)

// Parameter types.
const (
	ParamInput     = "input"
	ParamReference = "reference"
)

// Param binds a template placeholder to a literal value or to a field of an
// upstream node output ("nodeId.field").
type Param struct {
	Name          string `json:"name" validate:"required"`
	Type          string `json:"type,omitempty"`
	Value         any    `json:"value,omitempty"`
	ReferenceNode string `json:"referenceNode,omitempty"`
}

// LLM defaults.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2048
)

// LLMConfig is the data bag of the openai-compatible node family.
type LLMConfig struct {
	APIURL         string   `json:"apiUrl,omitempty"`
	APIKey         string   `json:"apiKey,omitempty"`
	Model          string   `json:"model,omitempty"`
	Temperature    *float64 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	Prompt         string   `json:"prompt,omitempty"`
	SystemPrompt   string   `json:"systemPrompt,omitempty"`
	InputParams    []Param  `json:"inputParams,omitempty" validate:"dive"`
	OutputParams   []Param  `json:"outputParams,omitempty" validate:"dive"`
	Streaming      bool     `json:"streaming,omitempty"`
	EnableStream   bool     `json:"enableStream,omitempty"`
	MaxTokens      int      `json:"maxTokens,omitempty" validate:"omitempty,min=1"`
	ResponseFormat string   `json:"responseFormat,omitempty"`
}

// ApplyDefaults trims credentials and fills temperature and token limits.
func (c *LLMConfig) ApplyDefaults() {
	c.APIURL = strings.TrimSpace(c.APIURL)
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.Model = strings.TrimSpace(c.Model)
	if c.Temperature == nil {
		t := DefaultTemperature
		c.Temperature = &t
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
}

// Stream reports whether either streaming flag is set.
func (c *LLMConfig) Stream() bool { return c.Streaming || c.EnableStream }

// JSONMode reports whether the response should be parsed as a JSON object.
func (c *LLMConfig) JSONMode() bool {
	f := strings.ToLower(strings.TrimSpace(c.ResponseFormat))
	return f == "json" || f == "json_object"
}

// OutputConfig is the data bag of the output node.
type OutputConfig struct {
	ResponseContent string  `json:"responseContent,omitempty"`
	OutputParams    []Param `json:"outputParams,omitempty" validate:"dive"`
}

// TTS defaults.
const (
	DefaultTTSModel    = "qwen3-tts-flash"
	DefaultTTSVoice    = "Cherry"
	DefaultTTSLanguage = "Auto"
)

// TTSConfig is the data bag of the tts node.
type TTSConfig struct {
	APIKey       string  `json:"apiKey,omitempty"`
	Model        string  `json:"model,omitempty"`
	Voice        string  `json:"voice,omitempty"`
	LanguageType string  `json:"languageType,omitempty"`
	InputParams  []Param `json:"inputParams,omitempty" validate:"dive"`
}

// ApplyDefaults fills model, voice and language.
func (c *TTSConfig) ApplyDefaults() {
	c.APIKey = strings.TrimSpace(c.APIKey)
	if c.Model == "" {
		c.Model = DefaultTTSModel
	}
	if c.Voice == "" {
		c.Voice = DefaultTTSVoice
	}
	if c.LanguageType == "" {
		c.LanguageType = DefaultTTSLanguage
	}
}

// DecodeConfig decodes the node's data bag into out. Unknown keys are
// ignored so editors can store extra display fields.
func DecodeConfig(n Node, out any) error {
	if len(n.Data) == 0 {
		return nil
	}
	b, err := json.Marshal(n.Data)
	if err != nil {
		return errors.InvalidNodeConfig(n.Type, err.Error()).WithCause(err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return errors.InvalidNodeConfig(n.Type, err.Error()).WithCause(err).WithDetail("node", n.ID)
	}
	return nil
}
