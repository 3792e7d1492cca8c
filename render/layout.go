package render

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// subItem matches a "- " item starting the text or following . : or ;
var subItem = regexp.MustCompile(`(^|[.:;])\s*- `)

// Normalize splits text into the lines that must start on their own:
// embedded newlines, and "- " sub-items. Blank lines are dropped.
func Normalize(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = subItem.ReplaceAllString(text, "$1\n- ")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Wrap breaks line into pieces no wider than width as measured by measure.
// Words are kept whole unless a single word is wider than width.
func Wrap(line string, width float64, measure func(string) float64) []string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return nil
	}

	var out []string
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if measure(candidate) <= width {
			current = candidate
			continue
		}
		if current != "" {
			out = append(out, current)
			current = ""
		}
		for measure(word) > width && utf8.RuneCountInString(word) > 1 {
			head, tail := splitToWidth(word, width, measure)
			out = append(out, head)
			word = tail
		}
		current = word
	}
	if current != "" {
		out = append(out, current)
	}
	return out
}

// splitToWidth cuts the longest prefix of word that fits width, keeping at
// least one rune so progress is always made.
func splitToWidth(word string, width float64, measure func(string) float64) (string, string) {
	cut := 0
	for i, r := range word {
		next := i + utf8.RuneLen(r)
		if cut > 0 && measure(word[:next]) > width {
			break
		}
		cut = next
	}
	return word[:cut], word[cut:]
}

// Style selects the font used for a line
type Style int

const (
	StyleBody Style = iota
	StyleHeading
	StyleTitle
)

// Line is one line of text waiting to be placed on a page
type Line struct {
	Text  string
	Style Style
	// Gap is extra space left above the line
	Gap float64
}

// Placed is a line positioned on a page
type Placed struct {
	Line
	Y float64
}

// Pager places lines top to bottom between the page margins
type Pager struct {
	Top        float64
	Bottom     float64
	LineHeight func(Style) float64
}

// Paginate assigns every line a vertical position. When the next line would
// pass the bottom margin a new page starts at the top margin. A gap is not
// carried over to the top of a new page.
func (p Pager) Paginate(lines []Line) [][]Placed {
	var pages [][]Placed
	var page []Placed
	y := p.Top

	for _, l := range lines {
		h := p.LineHeight(l.Style)
		gap := l.Gap
		if len(page) == 0 {
			gap = 0
		}
		if len(page) > 0 && y+gap+h > p.Bottom {
			pages = append(pages, page)
			page = nil
			y = p.Top
			gap = 0
		}
		y += gap + h
		page = append(page, Placed{Line: l, Y: y})
	}

	if len(page) > 0 {
		pages = append(pages, page)
	}
	return pages
}
