package compose

import (
	"regexp"
	"strings"
)

// Segment is a run of headline text, either highlighted or plain.
type Segment struct {
	Text        string
	Highlighted bool
}

// Segments splits headline into plain and highlighted runs. Phrases are matched
// case-insensitively as literal text, earlier phrases winning at the same
// position. Joining the Text of every segment gives back headline exactly.
func Segments(headline string, phrases []string) []Segment {
	if headline == "" {
		return nil
	}
	if len(phrases) == 0 || phrases[0] == "" {
		return []Segment{{Text: headline}}
	}

	quoted := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p != "" {
			quoted = append(quoted, regexp.QuoteMeta(p))
		}
	}
	re := regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)`)

	var segments []Segment
	add := func(text string) {
		if text == "" {
			return
		}
		segments = append(segments, Segment{Text: text, Highlighted: matchesAny(text, phrases)})
	}

	last := 0
	for _, loc := range re.FindAllStringIndex(headline, -1) {
		add(headline[last:loc[0]])
		add(headline[loc[0]:loc[1]])
		last = loc[1]
	}
	add(headline[last:])
	return segments
}

func matchesAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if p != "" && strings.EqualFold(text, p) {
			return true
		}
	}
	return false
}
