package speech

import (
	"strings"
	"unicode/utf8"

	"github.com/kbukum/paiflow/errors"
)

// Input limits of a single synthesis call.
const (
	MaxChunkChars = 400
	MaxChunkBytes = 600
)

const breakPunctuation = "。！？；,.!?;"

// SplitText cuts text into pieces of at most MaxChunkChars characters and
// MaxChunkBytes UTF-8 bytes. A piece that does not reach the end of the
// text ends after the last punctuation mark it contains, when there is one
// past its first character. Concatenating the pieces yields text.
func SplitText(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.InvalidInput("text", "text to synthesize is empty")
	}
	runes := []rune(text)
	var pieces []string

	for start := 0; start < len(runes); {
		end, size := start, 0
		for end < len(runes) && end-start < MaxChunkChars {
			n := utf8.RuneLen(runes[end])
			if n < 0 {
				n = utf8.RuneLen(utf8.RuneError)
			}
			if size+n > MaxChunkBytes {
				break
			}
			size += n
			end++
		}

		if end < len(runes) {
			if p := lastBreak(runes, start, end); p > start {
				end = p + 1
			}
		}
		pieces = append(pieces, string(runes[start:end]))
		start = end
	}
	return pieces, nil
}

func lastBreak(runes []rune, start, end int) int {
	for i := end - 1; i >= start; i-- {
		if strings.ContainsRune(breakPunctuation, runes[i]) {
			return i
		}
	}
	return -1
}
