package nodes

import (
	"context"
	"fmt"
	"path"

	"github.com/google/uuid"

	"github.com/kbukum/paiflow/errors"
	"github.com/kbukum/paiflow/event"
	"github.com/kbukum/paiflow/executor"
	"github.com/kbukum/paiflow/logger"
	"github.com/kbukum/paiflow/speech"
	"github.com/kbukum/paiflow/storage"
	"github.com/kbukum/paiflow/template"
	"github.com/kbukum/paiflow/workflow"
)

const audioDir = "audio"

// TTS converts upstream text to a single WAV file in object storage.
type TTS struct {
	synth   speech.Synthesizer
	storage storage.Storage
	log     *logger.Logger
	newName func() string
}

var _ executor.ProgressExecutor = (*TTS)(nil)

// NewTTS creates the tts executor.
func NewTTS(synth speech.Synthesizer, store storage.Storage, log *logger.Logger) *TTS {
	return &TTS{
		synth:   synth,
		storage: store,
		log:     log.WithComponent("nodes.tts"),
		newName: func() string { return "audio_" + uuid.NewString() + ".wav" },
	}
}

// Execute implements executor.NodeExecutor.
func (n *TTS) Execute(ctx context.Context, node workflow.Node, input map[string]any) (map[string]any, error) {
	return n.run(ctx, node, input, nil)
}

// ExecuteWithProgress implements executor.ProgressExecutor and reports each
// synthesized piece.
func (n *TTS) ExecuteWithProgress(ctx context.Context, node workflow.Node, input map[string]any, sink event.Sink) (map[string]any, error) {
	return n.run(ctx, node, input, sink)
}

func (n *TTS) run(ctx context.Context, node workflow.Node, input map[string]any, sink event.Sink) (map[string]any, error) {
	if n.synth == nil {
		return nil, errors.ServiceUnavailable("tts")
	}
	if n.storage == nil {
		return nil, errors.ServiceUnavailable("storage")
	}
	var cfg workflow.TTSConfig
	if err := workflow.DecodeConfig(node, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if cfg.APIKey == "" {
		return nil, errors.MissingField("apiKey")
	}
	log := n.log.WithContext(ctx).WithNode(node.ID, node.Type)

	voice, known := speech.NormalizeVoice(cfg.Voice)
	if !known {
		log.Warn("unknown voice, using default", logger.Fields("voice", cfg.Voice, "default", voice))
	}

	pieces, err := speech.SplitText(textToSpeak(cfg, input))
	if err != nil {
		return nil, err
	}

	audio := make([][]byte, 0, len(pieces))
	for i, piece := range pieces {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		event.Emit(sink, event.NodeProgressed(node.ID, node.Type,
			fmt.Sprintf("synthesizing piece %d/%d", i+1, len(pieces)),
			map[string]any{"chunk": i + 1, "total": len(pieces)}))

		res, err := n.synth.Synthesize(ctx, speech.SynthesisRequest{
			APIKey:       cfg.APIKey,
			Model:        cfg.Model,
			Text:         piece,
			Voice:        voice,
			LanguageType: cfg.LanguageType,
		})
		if err != nil {
			return nil, err
		}
		data, err := n.synth.Fetch(ctx, res.AudioURL)
		if err != nil {
			return nil, err
		}
		audio = append(audio, data)
	}

	merged, err := speech.MergeWAV(audio)
	if err != nil {
		return nil, errors.Internal(err)
	}
	fileName := n.newName()
	url, err := storage.Put(ctx, n.storage, path.Join(audioDir, fileName), merged, "audio/wav")
	if err != nil {
		return nil, err
	}
	log.Info("audio stored", logger.Fields("file", fileName, "chunks", len(pieces), "bytes", len(merged)))

	return map[string]any{
		"audioUrl": url,
		"fileName": fileName,
		"output":   url,
		"chunks":   len(pieces),
	}, nil
}

// textToSpeak takes the "text" input param when declared, otherwise the
// upstream output, input or text field.
func textToSpeak(cfg workflow.TTSConfig, input map[string]any) string {
	for _, p := range cfg.InputParams {
		if p.Name != "text" {
			continue
		}
		if v, ok := template.Resolve(p, input); ok {
			if s := template.String(v); s != "" {
				return s
			}
		}
	}
	return inputText(input, "output", "input", "text")
}
