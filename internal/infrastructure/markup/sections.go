package markup

import "strings"

// SectionText extracts the body text of the i-th tracked heading section:
// every text block between the heading and the next tracked heading, joined
// with single spaces. The last section is bounded by the end of the heading's
// parent subtree, so trailing page text outside it stays available for the
// conclusion. maxBlocks caps the number of collected text blocks; the second
// return reports whether the cap cut the section short.
func (d *Document) SectionText(i, maxBlocks int) (string, bool) {
	if i < 0 || i >= len(d.headings) {
		return "", false
	}
	lo := d.nodes[d.headings[i]].end
	hi := d.sectionEnd(i)
	return d.textInRange(lo, hi, maxBlocks)
}

// IntroText extracts the text preceding the first tracked heading.
func (d *Document) IntroText(maxBlocks int) (string, bool) {
	if len(d.headings) == 0 {
		return "", false
	}
	return d.textInRange(0, d.headings[0], maxBlocks)
}

// ConclusionText extracts the text after the last heading section closes.
func (d *Document) ConclusionText(maxBlocks int) (string, bool) {
	if len(d.headings) == 0 {
		return "", false
	}
	return d.textInRange(d.sectionEnd(len(d.headings)-1), len(d.nodes), maxBlocks)
}

// BodyText extracts the full body text; used when a page has no tracked
// headings at all.
func (d *Document) BodyText(maxBlocks int) (string, bool) {
	return d.textInRange(0, len(d.nodes), maxBlocks)
}

func (d *Document) sectionEnd(i int) int {
	if i+1 < len(d.headings) {
		return d.headings[i+1]
	}
	parent := d.nodes[d.headings[i]].parent
	if parent < 0 {
		return len(d.nodes)
	}
	return d.nodes[parent].end
}

func (d *Document) textInRange(lo, hi, maxBlocks int) (string, bool) {
	if lo < 0 {
		lo = 0
	}
	if hi > len(d.nodes) {
		hi = len(d.nodes)
	}

	var b strings.Builder
	blocks := 0
	for i := lo; i < hi; i++ {
		if d.nodes[i].tag != "" {
			continue
		}
		if maxBlocks > 0 && blocks >= maxBlocks {
			return b.String(), true
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(d.nodes[i].text)
		blocks++
	}
	return b.String(), false
}
