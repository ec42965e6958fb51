package segment

import (
	"fmt"
	"strings"
	"testing"
)

// words generates n distinct words so window boundaries are observable.
func words(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("w%d", i)
	}
	return out
}

func TestSegment_BasicHeadings(t *testing.T) {
	input := `# Getting Started

This introduction section explains what the service does in enough words to survive.

## Installation

Run the installer and follow the prompts until the setup wizard reports success here.
`

	s := NewMarkdownSegmenter()
	chunks, err := s.Segment([]byte(input), 400, 50)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}

	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}

	if chunks[0].SectionTitle != "Getting Started" {
		t.Errorf("Chunk 0 title: expected 'Getting Started', got %q", chunks[0].SectionTitle)
	}
	if chunks[0].HeadingLevel != 1 {
		t.Errorf("Chunk 0 level: expected 1, got %d", chunks[0].HeadingLevel)
	}
	if !strings.Contains(chunks[0].Content, "introduction section") {
		t.Errorf("Chunk 0 missing expected content: %q", chunks[0].Content)
	}
	if strings.Contains(chunks[0].Content, "installer") {
		t.Errorf("Chunk 0 swallowed the next section: %q", chunks[0].Content)
	}

	if chunks[1].SectionTitle != "Installation" {
		t.Errorf("Chunk 1 title: expected 'Installation', got %q", chunks[1].SectionTitle)
	}
	if chunks[1].HeadingLevel != 2 {
		t.Errorf("Chunk 1 level: expected 2, got %d", chunks[1].HeadingLevel)
	}

	for i, c := range chunks {
		if c.TotalChunks == nil || *c.TotalChunks != 1 {
			t.Errorf("Chunk %d: expected TotalChunks 1, got %v", i, c.TotalChunks)
		}
		if c.ChunkIndex != 0 {
			t.Errorf("Chunk %d: expected ChunkIndex 0, got %d", i, c.ChunkIndex)
		}
	}
}

func TestSegment_LongSectionWindows(t *testing.T) {
	// 600 words with max 400 and overlap 50 yields windows starting at
	// word 0 and word 350.
	body := strings.Join(words(600), " ")
	input := "# Big Section\n\n" + body + "\n"

	s := NewMarkdownSegmenter()
	chunks, err := s.Segment([]byte(input), 400, 50)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}

	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}

	first := strings.Fields(chunks[0].Content)
	second := strings.Fields(chunks[1].Content)

	if len(first) != 400 {
		t.Errorf("First window: expected 400 words, got %d", len(first))
	}
	if len(second) != 250 {
		t.Errorf("Second window: expected 250 words, got %d", len(second))
	}
	if second[0] != "w350" {
		t.Errorf("Second window start: expected w350, got %s", second[0])
	}

	// The last 50 words of window one are the first 50 of window two.
	tail := first[350:]
	head := second[:50]
	for i := range tail {
		if tail[i] != head[i] {
			t.Fatalf("Overlap mismatch at %d: %s vs %s", i, tail[i], head[i])
		}
	}

	for i, c := range chunks {
		if c.ChunkIndex != i {
			t.Errorf("Chunk %d: expected index %d, got %d", i, i, c.ChunkIndex)
		}
		if c.TotalChunks == nil || *c.TotalChunks != 2 {
			t.Errorf("Chunk %d: expected TotalChunks 2, got %v", i, c.TotalChunks)
		}
		if c.WordCount != len(strings.Fields(c.Content)) {
			t.Errorf("Chunk %d: WordCount %d does not match content", i, c.WordCount)
		}
	}
}

func TestSegment_ShortWindowDropped(t *testing.T) {
	input := "# Tiny\n\ntoo few words here\n"

	s := NewMarkdownSegmenter()
	chunks, err := s.Segment([]byte(input), 400, 50)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("Expected 0 chunks for a section under the minimum, got %d", len(chunks))
	}
}

func TestSegment_PreambleBeforeFirstHeadingDropped(t *testing.T) {
	input := `Orphan preamble text that belongs to no section and must not be indexed at all.

# Real Section

The body of the first real section carries more than enough words to be kept.
`

	s := NewMarkdownSegmenter()
	chunks, err := s.Segment([]byte(input), 400, 50)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}

	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if strings.Contains(chunks[0].Content, "Orphan preamble") {
		t.Errorf("Preamble leaked into a section chunk: %q", chunks[0].Content)
	}
}

func TestSegment_CleaningStripsDecoration(t *testing.T) {
	input := "# Styles\n\nSome **bold** and _italic_ and `code` plus a |table|cell| row with more filler words appended here.\n"

	s := NewMarkdownSegmenter()
	chunks, err := s.Segment([]byte(input), 400, 50)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}

	content := chunks[0].Content
	for _, marker := range []string{"*", "_", "`"} {
		if strings.Contains(content, marker) {
			t.Errorf("Content still contains %q: %q", marker, content)
		}
	}
	if !strings.Contains(content, "table | cell") {
		t.Errorf("Pipe runs not normalized: %q", content)
	}
}

func TestSegment_NoHeadingsFallback(t *testing.T) {
	input := `First paragraph with a reasonable amount of ordinary prose text in it for grouping.

Second paragraph continues the document with yet more plain prose and no headings anywhere.
`

	s := NewMarkdownSegmenter()
	chunks, err := s.Segment([]byte(input), 400, 50)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}

	if len(chunks) != 1 {
		t.Fatalf("Expected 1 fallback chunk, got %d", len(chunks))
	}
	c := chunks[0]
	if c.SectionTitle != "Document Content" {
		t.Errorf("Fallback title: expected 'Document Content', got %q", c.SectionTitle)
	}
	if c.TotalChunks != nil {
		t.Errorf("Fallback total: expected nil, got %d", *c.TotalChunks)
	}
	if c.ChunkIndex != 0 {
		t.Errorf("Fallback index: expected 0, got %d", c.ChunkIndex)
	}
	if !strings.Contains(c.Content, "Second paragraph") {
		t.Errorf("Fallback chunk missing second paragraph: %q", c.Content)
	}
}

func TestSegment_FallbackGroupsAtLimit(t *testing.T) {
	// Two 30-word paragraphs against a 40-word limit flush after the
	// second paragraph, then the carried paragraph alone stays under the
	// limit and flushes at end of input.
	p1 := strings.Join(words(30), " ")
	p2 := strings.Join(words(30), " ")
	input := p1 + "\n\n" + p2 + "\n"

	s := NewMarkdownSegmenter()
	chunks, err := s.Segment([]byte(input), 40, 0)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}

	if len(chunks) != 2 {
		t.Fatalf("Expected 2 fallback chunks, got %d", len(chunks))
	}
	if chunks[0].WordCount != 60 {
		t.Errorf("First group: expected 60 words, got %d", chunks[0].WordCount)
	}
	if chunks[1].WordCount != 30 {
		t.Errorf("Carried group: expected 30 words, got %d", chunks[1].WordCount)
	}
	if chunks[0].ChunkIndex != 0 || chunks[1].ChunkIndex != 1 {
		t.Errorf("Fallback indices: got %d, %d", chunks[0].ChunkIndex, chunks[1].ChunkIndex)
	}
}

func TestSegment_SetextHeadingsAreNotSectionMarkers(t *testing.T) {
	// Underlined headings are ordinary content: a document with only
	// setext headings takes the no-heading fallback path.
	input := `Quarterly Update
================

The quarterly update covers revenue, hiring plans and the roadmap for the next two quarters.
`

	s := NewMarkdownSegmenter()
	chunks, err := s.Segment([]byte(input), 400, 50)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}

	if len(chunks) != 1 {
		t.Fatalf("Expected 1 fallback chunk, got %d", len(chunks))
	}
	if chunks[0].SectionTitle != "Document Content" {
		t.Errorf("Fallback title: expected 'Document Content', got %q", chunks[0].SectionTitle)
	}
	if chunks[0].TotalChunks != nil {
		t.Errorf("Fallback total: expected nil, got %d", *chunks[0].TotalChunks)
	}
}

func TestSegment_SetextInsideHashSectionStaysContent(t *testing.T) {
	input := `# Report

Not A Section
-------------

The body keeps flowing under the same heading with plenty of words to survive the minimum.
`

	s := NewMarkdownSegmenter()
	chunks, err := s.Segment([]byte(input), 400, 50)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}

	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].SectionTitle != "Report" {
		t.Errorf("Title: expected 'Report', got %q", chunks[0].SectionTitle)
	}
	if !strings.Contains(chunks[0].Content, "Not A Section") {
		t.Errorf("Underlined text missing from section content: %q", chunks[0].Content)
	}
}

func TestSegment_TinyDocumentYieldsNothing(t *testing.T) {
	s := NewMarkdownSegmenter()
	chunks, err := s.Segment([]byte("just a few words\n"), 400, 50)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("Expected 0 chunks, got %d", len(chunks))
	}
}

func TestWindowWords_OverlapAtLeastWindowStillAdvances(t *testing.T) {
	w := words(25)
	out := windowWords(w, 10, 10)
	if len(out) != 3 {
		t.Fatalf("Expected 3 windows, got %d", len(out))
	}
	if out[1][0] != "w10" {
		t.Errorf("Second window start: expected w10, got %s", out[1][0])
	}
}
