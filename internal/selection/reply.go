package selection

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spacesedan/newscard/internal/models"
)

// Sentinel is the whole reply the model gives when no article qualifies.
const Sentinel = "IRRELEVANT"

const (
	KeyChosenID       = "CHOSEN_ID"
	KeyHeadline       = "HEADLINE"
	KeyHighlightWords = "HIGHLIGHT_WORDS"
	KeyImagePrompt    = "IMAGE_PROMPT"
	KeyCaption        = "CAPTION"
	KeySourceName     = "SOURCE_NAME"
)

var requiredKeys = []string{KeyChosenID, KeyHeadline, KeyHighlightWords, KeyImagePrompt, KeyCaption, KeySourceName}

var (
	// ErrNoRelevantArticle means the model answered with the sentinel.
	ErrNoRelevantArticle = errors.New("no relevant article")
	// ErrMalformedReply means the reply was neither the sentinel nor a complete record.
	ErrMalformedReply = errors.New("malformed model reply")
)

type ReplyKind int

const (
	ReplyInvalid ReplyKind = iota
	ReplyNone
	ReplyParsed
)

func (k ReplyKind) String() string {
	switch k {
	case ReplyNone:
		return "none"
	case ReplyParsed:
		return "parsed"
	default:
		return "invalid"
	}
}

// Reply is the outcome of parsing one model reply. Result is set only for
// ReplyParsed and Err only for ReplyInvalid.
type Reply struct {
	Kind   ReplyKind
	Result models.SelectionResult
	Err    error
}

// ParseReply interprets text against a candidate set of size n. It accepts
// exactly two shapes: the sentinel, or KEY: value lines carrying all six keys
// with a CHOSEN_ID in [1, n]. Everything else is ReplyInvalid.
func ParseReply(text string, n int) Reply {
	text = strings.TrimSpace(text)
	if text == Sentinel {
		return Reply{Kind: ReplyNone}
	}
	text = stripCodeFence(text)
	if text == Sentinel {
		return Reply{Kind: ReplyNone}
	}

	fields := make(map[string]string, len(requiredKeys))
	for _, line := range strings.Split(text, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		if !isRequiredKey(key) {
			continue
		}
		if _, dup := fields[key]; dup {
			return invalid("duplicate key %s", key)
		}
		fields[key] = strings.TrimSpace(value)
	}

	for _, key := range requiredKeys {
		if _, ok := fields[key]; !ok {
			return invalid("missing key %s", key)
		}
	}

	index, err := strconv.Atoi(fields[KeyChosenID])
	if err != nil {
		return invalid("%s %q is not an integer", KeyChosenID, fields[KeyChosenID])
	}
	if index < 1 || index > n {
		return invalid("%s %d out of range 1..%d", KeyChosenID, index, n)
	}
	if fields[KeyHeadline] == "" {
		return invalid("%s is empty", KeyHeadline)
	}

	return Reply{
		Kind: ReplyParsed,
		Result: models.SelectionResult{
			ChosenIndex:      index,
			Headline:         fields[KeyHeadline],
			HighlightPhrases: splitPhrases(fields[KeyHighlightWords]),
			ImagePrompt:      fields[KeyImagePrompt],
			Caption:          fields[KeyCaption],
			SourceName:       fields[KeySourceName],
		},
	}
}

func invalid(format string, args ...any) Reply {
	return Reply{Kind: ReplyInvalid, Err: fmt.Errorf("%w: "+format, append([]any{ErrMalformedReply}, args...)...)}
}

func isRequiredKey(key string) bool {
	for _, k := range requiredKeys {
		if k == key {
			return true
		}
	}
	return false
}

// splitPhrases splits the comma-separated highlight list, trimming each entry
// and dropping empty ones. Order is preserved.
func splitPhrases(s string) []string {
	var phrases []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			phrases = append(phrases, p)
		}
	}
	return phrases
}

// stripCodeFence removes a surrounding ``` or ```text fence.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.Contains(s[:i], ":") {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
