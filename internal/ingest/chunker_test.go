package ingest

import (
	"reflect"
	"strings"
	"testing"
)

func TestChunk_Scenarios(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		chunkTokens   int
		overlapTokens int
		minTokens     int
		wantCount     int
	}{
		{
			name:      "Empty_Text",
			text:      "",
			wantCount: 0,
		},
		{
			name:        "Below_Minimum_Is_Discarded",
			text:        "too short",
			chunkTokens: 600, overlapTokens: 80, minTokens: 80,
			wantCount: 0,
		},
		{
			name:        "Single_Chunk_When_Text_Fits_Window",
			text:        strings.Repeat("a", 100),
			chunkTokens: 600, overlapTokens: 80, minTokens: 1,
			wantCount: 1,
		},
		{
			// window is 20 chars, no overlap: 100 chars split into 5 windows
			name:        "Exact_Windows_No_Overlap",
			text:        strings.Repeat("a", 100),
			chunkTokens: 5, overlapTokens: 0, minTokens: 1,
			wantCount: 5,
		},
		{
			// overlap equal to the window would stall the cursor, the
			// forced advance makes it behave like no overlap
			name:        "Overlap_Equals_Window_Still_Terminates",
			text:        strings.Repeat("a", 100),
			chunkTokens: 5, overlapTokens: 5, minTokens: 1,
			wantCount: 5,
		},
		{
			name:        "Whitespace_Only_Text",
			text:        strings.Repeat(" \n\t", 50),
			chunkTokens: 5, overlapTokens: 0, minTokens: 1,
			wantCount: 0,
		},
		{
			// zero window must return, not spin
			name:        "Zero_Params",
			text:        strings.Repeat("a", 100),
			chunkTokens: 0, overlapTokens: 0, minTokens: 0,
			wantCount: 0,
		},
		{
			// negative window must return, not panic on slice bounds
			name:        "Negative_Params",
			text:        strings.Repeat("a", 100),
			chunkTokens: -5, overlapTokens: -1, minTokens: -1,
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Chunk(tt.text, tt.chunkTokens, tt.overlapTokens, tt.minTokens)
			if len(got) != tt.wantCount {
				t.Fatalf("Chunk count got %d, want %d", len(got), tt.wantCount)
			}

			for i, c := range got {
				if c.Order != i {
					t.Errorf("Order not gap-free: chunk %d has order %d", i, c.Order)
				}
				if c.Tokens < tt.minTokens {
					t.Errorf("Chunk %d estimates %d tokens, below minimum %d", i, c.Tokens, tt.minTokens)
				}
				if c.Text != strings.TrimSpace(c.Text) {
					t.Errorf("Chunk %d text is not trimmed", i)
				}
			}
		})
	}
}

func TestChunk_OverlapAdvancesCursor(t *testing.T) {
	// window 20 chars, overlap 4 chars: windows start every 16 chars
	text := strings.Repeat("a", 100)
	got := Chunk(text, 5, 1, 1)

	// starts at 0, 16, 32, 48, 64, 80
	if len(got) != 6 {
		t.Fatalf("Chunk count got %d, want 6", len(got))
	}
	if got[5].Text != strings.Repeat("a", 20) {
		t.Errorf("Last chunk should cover the tail window, got %d chars", len(got[5].Text))
	}
}

func TestChunk_Deterministic(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 200)

	first := Chunk(text, 60, 8, 8)
	second := Chunk(text, 60, 8, 8)

	if len(first) == 0 {
		t.Fatal("Expected chunks from a long text")
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("Same input must produce byte-identical chunks")
	}
}
