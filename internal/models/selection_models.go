package models

// SelectionResult is the editorial decision produced by the language model for
// one category. ChosenIndex is 1-based into the candidate list that was shown.
type SelectionResult struct {
	ChosenIndex      int      `json:"chosen_index"`
	Headline         string   `json:"headline"`
	HighlightPhrases []string `json:"highlight_phrases"`
	ImagePrompt      string   `json:"image_prompt"`
	Caption          string   `json:"caption"`
	SourceName       string   `json:"source_name"`
}

// ImagePayload is raster image bytes plus their MIME type, as passed between
// the resolver, the composer and the uploader.
type ImagePayload struct {
	MIMEType string
	Data     []byte
}
