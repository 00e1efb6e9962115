// Package textclean normalizes extracted Chinese text and organizes it into paragraphs.
package textclean

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Lllllllleong/chinesepdfparser/internal/models"
	"golang.org/x/text/unicode/norm"
)

// ShortSentenceRunes is the length under which consecutive sentences are merged
// into a single paragraph.
const ShortSentenceRunes = 15

var (
	// CJK unified ideographs, Unicode spaces and the punctuation commonly found in
	// typeset Traditional Chinese.
	horizontalDisallowed = regexp.MustCompile(`[^\x{4e00}-\x{9fff}\s\p{Zs}.,，。！？：；“”‘’"（）()、【】《》]`)
	verticalDisallowed   = regexp.MustCompile(`[^\x{4e00}-\x{9fff}\s\p{Zs}.,，。！？：；“”‘’"「」『』（）()、【】《》]`)

	pageMarker        = regexp.MustCompile(`第?[\t\p{Zs}]*\p{Nd}+[\t\p{Zs}]*頁`)
	chinesePageMarker = regexp.MustCompile(`第[一二三四五六七八九十百千零〇]+頁`)
	whitespaceRun     = regexp.MustCompile(`[\s\p{Zs}]+`)
)

// Cleaner applies the cleaning and paragraph rules of one Layout.
// It holds no state and is safe for concurrent use.
type Cleaner struct {
	layout models.Layout
}

// NewCleaner returns the Cleaner for the given layout.
func NewCleaner(layout models.Layout) *Cleaner {
	if layout != models.LayoutVertical {
		layout = models.LayoutHorizontal
	}
	return &Cleaner{layout: layout}
}

// Layout returns the layout this Cleaner was built for.
func (c *Cleaner) Layout() models.Layout { return c.layout }

// CleanText strips page markers and characters outside the whitelist. Horizontal
// text has whitespace runs collapsed to a single space; vertical text has all
// whitespace removed.
func (c *Cleaner) CleanText(text string) string {
	text = c.filter(stripPageMarkers(norm.NFC.String(text)))
	if c.layout == models.LayoutVertical {
		return whitespaceRun.ReplaceAllString(text, "")
	}
	text = whitespaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// CleanOCR post-processes raw OCR output. Vertical OCR output keeps its line
// structure so OrganizeContent can split on it.
func (c *Cleaner) CleanOCR(text string) string {
	if c.layout == models.LayoutVertical {
		return c.filter(norm.NFC.String(text))
	}
	return c.CleanText(text)
}

// OrganizeContent splits text into paragraphs.
func (c *Cleaner) OrganizeContent(text string) []string {
	if c.layout == models.LayoutVertical {
		return splitLines(text)
	}
	return c.mergeShortSentences(splitSentences(text))
}

// Joiner is the separator used when page blocks are combined before OrganizeContent.
func (c *Cleaner) Joiner() string {
	if c.layout == models.LayoutVertical {
		return "\n"
	}
	return " "
}

// ParagraphSeparator follows every paragraph in the plain-text transcript.
func (c *Cleaner) ParagraphSeparator() string {
	if c.layout == models.LayoutVertical {
		return "\n"
	}
	return "\n\n"
}

func (c *Cleaner) filter(text string) string {
	if c.layout == models.LayoutVertical {
		return verticalDisallowed.ReplaceAllString(text, "")
	}
	return horizontalDisallowed.ReplaceAllString(text, "")
}

func (c *Cleaner) mergeShortSentences(sentences []string) []string {
	var paragraphs []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			paragraphs = append(paragraphs, current.String())
			current.Reset()
		}
	}

	for _, raw := range sentences {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		sentence := c.CleanText(raw)
		if utf8.RuneCountInString(sentence) < ShortSentenceRunes {
			current.WriteString(sentence)
			continue
		}
		flush()
		paragraphs = append(paragraphs, sentence)
	}
	flush()

	out := paragraphs[:0]
	for _, p := range paragraphs {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitSentences cuts text after each 。！？ keeping the terminator with its sentence.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i, r := range text {
		switch r {
		case '。', '！', '？':
			end := i + utf8.RuneLen(r)
			sentences = append(sentences, text[start:end])
			start = end
		}
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}

func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func stripPageMarkers(text string) string {
	text = pageMarker.ReplaceAllString(text, "")
	return chinesePageMarker.ReplaceAllString(text, "")
}
