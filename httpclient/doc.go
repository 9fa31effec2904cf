// Package httpclient is the outbound HTTP client shared by the LLM and
// speech providers: bearer or API-key auth, retry of transient failures,
// status classification with the provider's error text, and Server-Sent
// Events streaming through the sse subpackage.
//
//	client, err := httpclient.New(httpclient.Config{
//	    Name:    "openai",
//	    BaseURL: "https://api.openai.com/v1",
//	    Auth:    httpclient.Bearer(key),
//	    Retry:   httpclient.RetryConfig(3),
//	})
//
//	var out chatResponse
//	err = client.DoJSON(ctx, httpclient.Request{
//	    Method: http.MethodPost,
//	    Path:   "/chat/completions",
//	    Body:   body,
//	}, &out)
package httpclient
