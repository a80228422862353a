package selection

import (
	"fmt"
	"strings"

	"github.com/spacesedan/newscard/internal/models"
)

// DefaultRelevanceRule is used when no rule is configured.
const DefaultRelevanceRule = `The article's primary subject must be Bangladesh: something that happened in Bangladesh, ` +
	`or that directly concerns Bangladeshi people, institutions or companies. ` +
	`Articles that only mention Bangladesh in passing, or are mainly about another country, do not qualify.`

// maxArticleRunes bounds how much of each article body goes into the prompt.
const maxArticleRunes = 1500

const promptTemplate = `You are the editor of a news page that publishes one image post per topic.
Below are %d candidate news articles, numbered from 1 to %d.

RELEVANCE RULE:
%s

Choose the single most newsworthy article that satisfies the relevance rule.
If no article satisfies it, reply with exactly %s and nothing else.

Otherwise reply with exactly these six lines, in this order, and nothing else:
%s: <the number of the chosen article>
%s: <a new, punchy headline for the story, at most 15 words>
%s: <comma-separated words or short phrases to highlight, each copied exactly from your headline, most important first>
%s: <a prompt for an image generator that illustrates the story abstractly; no real or identifiable people, no political figures, no violence, no gore, no text in the image>
%s: <a one or two sentence caption followed by 3 to 5 relevant hashtags; do not mention the source name>
%s: <the source name of the chosen article, as given>

Do not use markdown. Do not add explanations.

Articles:
%s`

// BuildPrompt serializes candidates as a 1-based numbered list in slice order
// and embeds the editorial instructions. The number printed for candidates[i]
// is always i+1.
func BuildPrompt(rule string, candidates []models.Article) string {
	if strings.TrimSpace(rule) == "" {
		rule = DefaultRelevanceRule
	}

	var sb strings.Builder
	for i, a := range candidates {
		fmt.Fprintf(&sb, "%d. Title: %s\n", i+1, oneLine(a.Title))
		fmt.Fprintf(&sb, "   Content: %s\n", truncateRunes(oneLine(a.Text()), maxArticleRunes))
		fmt.Fprintf(&sb, "   Source: %s\n", oneLine(a.SourceName))
	}

	n := len(candidates)
	return fmt.Sprintf(promptTemplate, n, n, strings.TrimSpace(rule), Sentinel,
		KeyChosenID, KeyHeadline, KeyHighlightWords, KeyImagePrompt, KeyCaption, KeySourceName,
		sb.String())
}

// oneLine collapses all whitespace runs so an article cannot break the
// numbered list structure.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
