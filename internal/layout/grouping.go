package layout

import (
	"math"
	"sort"
	"strings"
)

type glyph struct {
	text    string
	font    string
	size    float64
	x, y, w float64
}

func (g glyph) height() float64 {
	if g.size > 0 {
		return g.size
	}
	return 1
}

// line is a row (horizontal) or a column (vertical) of glyphs in reading order.
type line struct {
	text           string
	x0, y0, x1, y1 float64
	size           float64
	fonts          []Font
}

func buildLine(glyphs []glyph) line {
	var sb strings.Builder
	l := line{x0: math.Inf(1), y0: math.Inf(1), x1: math.Inf(-1), y1: math.Inf(-1)}
	for _, g := range glyphs {
		sb.WriteString(g.text)
		l.x0 = math.Min(l.x0, g.x)
		l.y0 = math.Min(l.y0, g.y)
		l.x1 = math.Max(l.x1, g.x+math.Max(g.w, 0))
		l.y1 = math.Max(l.y1, g.y+g.height())
		l.size = math.Max(l.size, g.height())
		l.fonts = appendFont(l.fonts, Font{Name: g.font, Size: g.size})
	}
	l.text = strings.TrimSpace(sb.String())
	return l
}

func appendFont(fonts []Font, f Font) []Font {
	for _, existing := range fonts {
		if existing == f {
			return fonts
		}
	}
	return append(fonts, f)
}

// groupRows assembles glyphs into rows ordered top to bottom, each read left to right.
func groupRows(glyphs []glyph) []line {
	return bands(glyphs,
		func(g glyph) float64 { return g.y },
		func(a, b glyph) bool { return a.x < b.x },
	)
}

// groupColumns assembles glyphs into columns ordered right to left, each read top to bottom.
func groupColumns(glyphs []glyph) []line {
	return bands(glyphs,
		func(g glyph) float64 { return g.x },
		func(a, b glyph) bool { return a.y > b.y },
	)
}

// bands sorts glyphs by descending coord, starts a new band whenever a glyph
// lies more than half a glyph size away from the band's first glyph, and
// orders each band with less.
func bands(glyphs []glyph, coord func(glyph) float64, less func(a, b glyph) bool) []line {
	sorted := append([]glyph(nil), glyphs...)
	sort.SliceStable(sorted, func(i, j int) bool { return coord(sorted[i]) > coord(sorted[j]) })

	var groups [][]glyph
	var anchor, size float64
	for _, g := range sorted {
		if n := len(groups); n > 0 && math.Abs(coord(g)-anchor) <= 0.5*math.Max(size, g.height()) {
			groups[n-1] = append(groups[n-1], g)
			size = math.Max(size, g.height())
			continue
		}
		groups = append(groups, []glyph{g})
		anchor, size = coord(g), g.height()
	}

	lines := make([]line, 0, len(groups))
	for _, group := range groups {
		sort.SliceStable(group, func(i, j int) bool { return less(group[i], group[j]) })
		if l := buildLine(group); l.text != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// groupBlocks merges consecutive lines into blocks while the gap between them
// stays within gapFactor times the larger font size and the lines overlap on
// the cross axis.
func groupBlocks(lines []line, vertical bool, gapFactor float64) []Block {
	var blocks []Block
	var texts []string
	var cur *Block
	flush := func() {
		if cur != nil {
			cur.Text = strings.Join(texts, "\n")
			blocks = append(blocks, *cur)
		}
		cur, texts = nil, nil
	}

	for i := range lines {
		l := lines[i]
		if cur != nil && !continues(lines[i-1], l, vertical, gapFactor) {
			flush()
		}
		if cur == nil {
			cur = &Block{Kind: KindText, X0: l.x0, Y0: l.y0, X1: l.x1, Y1: l.y1}
		}
		texts = append(texts, l.text)
		cur.X0 = math.Min(cur.X0, l.x0)
		cur.Y0 = math.Min(cur.Y0, l.y0)
		cur.X1 = math.Max(cur.X1, l.x1)
		cur.Y1 = math.Max(cur.Y1, l.y1)
		for _, f := range l.fonts {
			cur.Fonts = appendFont(cur.Fonts, f)
		}
	}
	flush()
	return blocks
}

func continues(prev, next line, vertical bool, gapFactor float64) bool {
	limit := gapFactor * math.Max(prev.size, next.size)
	if vertical {
		gap := prev.x0 - math.Max(next.x1, next.x0+next.size)
		return gap <= limit && overlaps(prev.y0, prev.y1, next.y0, next.y1)
	}
	gap := prev.y0 - next.y1
	return gap <= limit && overlaps(prev.x0, prev.x1, next.x0, next.x1)
}

func overlaps(a0, a1, b0, b1 float64) bool {
	return a0 <= b1 && b0 <= a1
}
