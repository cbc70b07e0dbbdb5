package answer

import (
	"strings"
)

const promptTemplate = `You are an AI assistant.
Answer using ONLY the dataset summary below.

Dataset Type: {{type}}

Dataset Info:
{{summary}}

Question:
{{question}}

Give a short and clear answer.
`

// BuildPrompt fills the fixed instruction template. The question is inserted
// as-is apart from surrounding whitespace.
func BuildPrompt(dt DatasetType, s Summary, question string) string {
	r := strings.NewReplacer(
		"{{type}}", string(dt),
		"{{summary}}", s.String(),
		"{{question}}", strings.TrimSpace(question),
	)
	return r.Replace(promptTemplate)
}
