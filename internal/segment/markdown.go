package segment

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/toc"
)

// Window defaults for markdown segmentation.
const (
	DefaultMaxChunkWords = 400
	DefaultOverlapWords  = 50
)

var (
	emphasisPattern = regexp.MustCompile("[*_`~]")
	pipePattern     = regexp.MustCompile(`\|+`)
	blankLineSplit  = regexp.MustCompile(`\n\s*\n`)
)

// cleanText normalizes whitespace and strips markdown decoration that adds
// no meaning for embedding (emphasis markers, table pipe runs).
func cleanText(s string) string {
	s = emphasisPattern.ReplaceAllString(s, "")
	s = pipePattern.ReplaceAllString(s, " | ")
	return strings.Join(strings.Fields(s), " ")
}

// MarkdownSegmenter splits markdown documents into heading-keyed sections and
// section content into overlapping word windows.
type MarkdownSegmenter struct {
	parser goldmark.Markdown
}

// NewMarkdownSegmenter creates a segmenter with a goldmark parser configured
// to assign heading IDs (required for section boundary lookup).
func NewMarkdownSegmenter() *MarkdownSegmenter {
	md := goldmark.New(
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)
	return &MarkdownSegmenter{parser: md}
}

// section is a heading plus the source span of its body.
type section struct {
	title   string
	level   int
	content string
}

// Segment converts a markdown document into chunks. Sections are keyed by the
// most recent heading (levels 1-6); text before the first heading is dropped.
// Section bodies are split into windows of maxChunkWords with overlapWords of
// back-overlap, and windows under MinChunkWords are discarded. Documents with
// no headings fall back to greedy paragraph grouping.
func (s *MarkdownSegmenter) Segment(source []byte, maxChunkWords, overlapWords int) ([]Chunk, error) {
	if maxChunkWords <= 0 {
		maxChunkWords = DefaultMaxChunkWords
	}
	if overlapWords < 0 {
		overlapWords = DefaultOverlapWords
	}

	sections, err := s.extractSections(source)
	if err != nil {
		return nil, err
	}

	if len(sections) == 0 {
		return segmentParagraphs(source, maxChunkWords), nil
	}

	var chunks []Chunk
	for _, sec := range sections {
		content := cleanText(sec.content)
		if content == "" {
			continue
		}
		windows := windowWords(strings.Fields(content), maxChunkWords, overlapWords)
		total := len(windows)
		for i, win := range windows {
			if len(win) < MinChunkWords {
				continue
			}
			t := total
			chunks = append(chunks, Chunk{
				Content:      strings.Join(win, " "),
				SectionTitle: sec.title,
				HeadingLevel: sec.level,
				ChunkIndex:   i,
				TotalChunks:  &t,
				WordCount:    len(win),
			})
		}
	}
	return chunks, nil
}

// extractSections walks the document's table of contents in document order
// and slices the source between consecutive heading lines.
func (s *MarkdownSegmenter) extractSections(source []byte) ([]section, error) {
	reader := text.NewReader(source)
	doc := s.parser.Parser().Parse(reader)

	tree, err := toc.Inspect(doc, source,
		toc.MinDepth(1),
		toc.MaxDepth(6),
		toc.Compact(true),
	)
	if err != nil {
		return nil, fmt.Errorf("inspect headings: %w", err)
	}

	var items []*toc.Item
	flattenItems(tree.Items, &items)

	type located struct {
		title string
		level int
		seg   text.Segment
	}
	var found []located
	for _, item := range items {
		node := findHeadingByID(doc, string(item.ID))
		if node == nil || node.Lines().Len() == 0 {
			continue
		}
		// Only "#" marked headings key sections; setext underlines are
		// treated as ordinary content.
		if !isHashHeading(source, node.Lines().At(0)) {
			continue
		}
		found = append(found, located{
			title: cleanText(string(item.Title)),
			level: node.(*ast.Heading).Level,
			seg:   node.Lines().At(0),
		})
	}

	sections := make([]section, 0, len(found))
	for i, h := range found {
		start := h.seg.Stop
		end := len(source)
		if i+1 < len(found) {
			end = lineStart(source, found[i+1].seg.Start)
		}
		if start > end {
			start = end
		}
		sections = append(sections, section{
			title:   h.title,
			level:   h.level,
			content: string(source[start:end]),
		})
	}
	return sections, nil
}

// flattenItems appends TOC items in pre-order, which matches document order.
func flattenItems(items toc.Items, out *[]*toc.Item) {
	for _, item := range items {
		*out = append(*out, item)
		flattenItems(item.Items, out)
	}
}

// findHeadingByID locates a heading node by its auto-generated ID.
func findHeadingByID(node ast.Node, id string) ast.Node {
	var found ast.Node
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && n.Kind() == ast.KindHeading {
			headingID, ok := n.AttributeString("id")
			if ok && string(headingID.([]byte)) == id {
				found = n
				return ast.WalkStop, nil
			}
		}
		return ast.WalkContinue, nil
	})
	return found
}

// isHashHeading reports whether the heading's text line begins with a "#"
// marker, distinguishing ATX headings from setext underline headings.
func isHashHeading(source []byte, seg text.Segment) bool {
	i := seg.Start
	for i > 0 && source[i-1] != '\n' {
		i--
	}
	for i < len(source) && source[i] == ' ' {
		i++
	}
	return i < len(source) && source[i] == '#'
}

// lineStart returns the offset of the start of the line containing pos, so a
// section body never swallows the next heading's marker characters.
func lineStart(source []byte, pos int) int {
	if i := bytes.LastIndexByte(source[:pos], '\n'); i >= 0 {
		return i
	}
	return 0
}

// windowWords splits words into sliding windows of maxWords with overlap
// words shared between consecutive windows. A section that fits in one window
// yields a single window. The step is clamped positive so an overlap equal to
// or larger than the window can never stall the scan.
func windowWords(words []string, maxWords, overlap int) [][]string {
	if len(words) <= maxWords {
		return [][]string{words}
	}
	step := maxWords - overlap
	if step <= 0 {
		step = maxWords
	}
	var out [][]string
	for i := 0; i < len(words); i += step {
		end := i + maxWords
		if end > len(words) {
			end = len(words)
		}
		out = append(out, words[i:end])
	}
	return out
}

// segmentParagraphs is the fallback for documents without headings. Blank
// line delimited paragraphs are grouped greedily until maxChunkWords, then
// flushed as a chunk titled "Document Content". Only the most recent
// paragraph carries over as seed overlap, and the final total is unknown, so
// TotalChunks stays nil.
func segmentParagraphs(source []byte, maxChunkWords int) []Chunk {
	var paragraphs []string
	for _, p := range blankLineSplit.Split(string(source), -1) {
		if cleaned := cleanText(p); cleaned != "" {
			paragraphs = append(paragraphs, cleaned)
		}
	}

	var chunks []Chunk
	var group []string
	index := 0

	flush := func(text string) {
		if wc := wordCount(text); wc >= MinChunkWords {
			chunks = append(chunks, Chunk{
				Content:      text,
				SectionTitle: "Document Content",
				HeadingLevel: 1,
				ChunkIndex:   index,
				WordCount:    wc,
			})
			index++
		}
	}

	for _, para := range paragraphs {
		group = append(group, para)
		if wordCount(strings.Join(group, " ")) >= maxChunkWords {
			flush(strings.Join(group, "\n\n"))
			if len(group) > 1 {
				group = []string{group[len(group)-1]}
			} else {
				group = nil
			}
		}
	}
	if len(group) > 0 {
		flush(strings.Join(group, "\n\n"))
	}
	return chunks
}
