// Package nodes provides the executors behind the built-in node types:
// input, output, the OpenAI-compatible LLM family (openai, qwen, zhipu,
// deepseek, ai_ping) and tts.
//
// Register wires every type into an executor registry with the shared
// collaborators in Deps:
//
//	reg := executor.NewRegistry(executor.WithLogging(log))
//	err := nodes.Register(reg, nodes.Deps{
//	    LLM:       llmClient,
//	    LLMConfig: cfg.LLM,
//	    Speech:    dashscope,
//	    Storage:   store,
//	})
package nodes
