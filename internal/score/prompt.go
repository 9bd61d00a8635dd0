// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/papercrawl/pkg/types"
)

// systemPrompt frames the model as a reviewer of AI research abstracts.
const systemPrompt = `You are an expert AI researcher with extensive knowledge of the latest advancements in artificial intelligence, machine learning, and related fields. Your task is to critically evaluate research papers based on their abstracts. When analyzing a paper, consider:

1. Novelty: How innovative is the proposed approach or idea?
2. Potential impact: What are the possible applications and implications of this research?
3. Methodology: Is the approach scientifically sound and well-justified?
4. Clarity: How clearly are the ideas presented?
5. Relevance: How closely does this research align with current trends and challenges in AI?

The relevance score reflects how important the research is to the field of AI. The excitement score indicates how likely the paper is to generate interest and discussion among researchers. Base your evaluation solely on the abstract.`

var userPromptTmpl = template.Must(template.New("score").Parse(`Please analyze the following paper and provide scores from 1-10 for its relevance to AI research and the excitement it will create in the field of AI. Respond with a JSON object containing integer "relevance_score" and "excitement_score" fields and a brief "explanation".

Title: {{.Title}}
Authors: {{.AuthorList}}
Abstract: {{.Abstract}}
`))

func renderPrompt(p types.Paper) (string, error) {
	var buf bytes.Buffer
	if err := userPromptTmpl.Execute(&buf, p); err != nil {
		return "", err
	}
	return buf.String(), nil
}
