package ingest

import (
	"strings"

	"github.com/findrightpeople/worker/internal/config"
)

// TextChunk is one emitted window of the source text. Order is gap-free from
// zero within a single chunking pass.
type TextChunk struct {
	Text   string
	Order  int
	Tokens int
}

// Chunk slides a fixed character window across text using the chars/4 token
// heuristic. Window pieces are whitespace-trimmed, pieces estimating below
// minTokens are discarded, and the cursor always advances so the pass
// terminates even when overlap >= window. A non-positive window yields
// nothing. Pure function: identical input yields byte-identical output.
func Chunk(text string, chunkTokens int, overlapTokens int, minTokens int) []TextChunk {
	if text == "" {
		return nil
	}

	window := chunkTokens * config.TokenCharRatio
	if min := minTokens * config.TokenCharRatio; min > window {
		window = min
	}
	if window <= 0 {
		return nil
	}
	overlap := overlapTokens * config.TokenCharRatio
	if overlap < 0 {
		overlap = 0
	}

	runes := []rune(text)
	n := len(runes)

	var chunks []TextChunk
	order := 0
	start := 0
	for start < n {
		end := start + window
		if end > n {
			end = n
		}
		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			estTokens := len([]rune(piece)) / config.TokenCharRatio
			if estTokens < 1 {
				estTokens = 1
			}
			if estTokens >= minTokens {
				chunks = append(chunks, TextChunk{Text: piece, Order: order, Tokens: estTokens})
				order++
			}
		}
		if end == n {
			break
		}
		if next := end - overlap; next > start {
			start = next
		} else {
			start = end
		}
	}
	return chunks
}
