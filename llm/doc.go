// Package llm is the OpenAI-compatible chat completions client behind the
// openai, qwen, zhipu, deepseek and ai_ping nodes.
//
// Every provider is reached through the same wire format; a node supplies
// its own [Endpoint] (base URL and key) with each call, so a single [Client]
// is shared by all nodes and runs:
//
//	client, err := llm.New(llm.Config{Timeout: time.Minute})
//
//	resp, err := client.Complete(ctx, llm.Endpoint{
//	    Provider: "deepseek",
//	    BaseURL:  "https://api.deepseek.com/v1",
//	    APIKey:   key,
//	}, llm.CompletionRequest{
//	    Model:    "deepseek-chat",
//	    Messages: []llm.Message{{Role: llm.RoleUser, Content: "Hello"}},
//	})
//
// Streaming returns a channel of [StreamChunk]; [Collect] assembles it while
// reporting each fragment. [ParseJSONObject] recovers a JSON object from
// json-mode output.
package llm
