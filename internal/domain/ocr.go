package domain

// OCRToken is one recognized text line, in the engine's output order.
type OCRToken struct {
	Text       string  `json:"text"`
	Confidence float32 `json:"confidence"`
}

func TokenTexts(tokens []OCRToken) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, t.Text)
	}
	return out
}
