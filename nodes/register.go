package nodes

import (
	"github.com/kbukum/paiflow/executor"
	"github.com/kbukum/paiflow/llm"
	"github.com/kbukum/paiflow/logger"
	"github.com/kbukum/paiflow/speech"
	"github.com/kbukum/paiflow/storage"
)

// Node type keys.
const (
	TypeInput    = "input"
	TypeOutput   = "output"
	TypeOpenAI   = "openai"
	TypeQwen     = "qwen"
	TypeZhipu    = "zhipu"
	TypeDeepSeek = "deepseek"
	TypeAIPing   = "ai_ping"
	TypeTTS      = "tts"
)

// LLMTypes lists the node types served by the OpenAI-compatible executor.
var LLMTypes = []string{TypeOpenAI, TypeQwen, TypeZhipu, TypeDeepSeek, TypeAIPing}

// Deps are the collaborators shared by all node executors. A nil LLM,
// Speech or Storage makes the nodes that need it fail when they run; the
// types are registered either way.
type Deps struct {
	LLM       llm.Provider
	LLMConfig llm.Config
	Speech    speech.Synthesizer
	Storage   storage.Storage
	Logger    *logger.Logger
}

// Register adds every built-in node type to reg.
func Register(reg *executor.Registry, deps Deps) error {
	log := deps.Logger
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	deps.LLMConfig.ApplyDefaults()

	if err := reg.Register(TypeInput, Input{}); err != nil {
		return err
	}
	if err := reg.Register(TypeOutput, Output{}); err != nil {
		return err
	}
	for _, t := range LLMTypes {
		if err := reg.Register(t, NewLLM(t, deps.LLM, deps.LLMConfig.BaseURL(t), log)); err != nil {
			return err
		}
	}
	return reg.Register(TypeTTS, NewTTS(deps.Speech, deps.Storage, log))
}
