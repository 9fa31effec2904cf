package speech

import (
	"encoding/binary"
	"fmt"
)

// wavHeaderSize is the canonical PCM RIFF header length.
const wavHeaderSize = 44

// MergeWAV concatenates PCM WAV files that share one format. The first
// file's 44-byte header is kept with its RIFF and data sizes rewritten; the
// audio after byte 44 of every file is appended. A single file is returned
// unchanged.
func MergeWAV(parts [][]byte) ([]byte, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("speech: no audio to merge")
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	if len(parts[0]) < wavHeaderSize {
		return nil, fmt.Errorf("speech: invalid wav data: %d bytes", len(parts[0]))
	}

	total := wavHeaderSize
	for _, p := range parts {
		if len(p) > wavHeaderSize {
			total += len(p) - wavHeaderSize
		}
	}

	out := make([]byte, 0, total)
	out = append(out, parts[0][:wavHeaderSize]...)
	for _, p := range parts {
		if len(p) > wavHeaderSize {
			out = append(out, p[wavHeaderSize:]...)
		}
	}

	binary.LittleEndian.PutUint32(out[4:8], uint32(len(out)-8))
	binary.LittleEndian.PutUint32(out[40:44], uint32(len(out)-wavHeaderSize))
	return out, nil
}
