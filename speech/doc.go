// Package speech turns text into audio for the tts node.
//
// [DashScope] calls the DashScope multimodal generation API, which accepts
// short inputs only, so callers cut long text with [SplitText], synthesize
// each piece, [Synthesizer.Fetch] the returned WAV files and join them with
// [MergeWAV].
package speech
