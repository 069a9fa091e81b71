// Package summarize turns a meeting transcript into a structured
// summary through the Gemini API, and runs the tracked background
// jobs that do so after a meeting ends.
package summarize

import (
	"google.golang.org/genai"
)

// summaryPrompt frames the transcript for the model. The output shape
// is not described here; it is enforced by the response schema so the
// request and the decoder cannot drift apart.
const summaryPrompt = `You are an expert meeting summarizer. Analyze the following meeting
transcript and respond in the required JSON format.

Transcript:
---
%s
---`

// ResponseSchema is the one definition of the summary contract. The
// same field set appears as JSON tags on meetings.Summary, which the
// response is decoded into; a schema test keeps the two aligned.
func ResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title": {
				Type:        genai.TypeString,
				Description: "A concise, 5-10 word title for the meeting.",
			},
			"summary_points": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "Bullet points covering the meeting's purpose and key outcomes.",
			},
			"action_items": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "Actionable tasks, each formatted as 'item — owner'.",
			},
			"sentiment": {
				Type:        genai.TypeString,
				Description: "Overall sentiment: Positive, Negative, or Neutral.",
			},
			"participants": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"speaker": {
							Type:        genai.TypeString,
							Description: "The speaker's identifier.",
						},
						"contribution": {
							Type:        genai.TypeString,
							Description: "One sentence on this speaker's contribution and its sentiment.",
						},
					},
					Required: []string{"speaker", "contribution"},
				},
				Description: "Optional per-participant analysis.",
			},
		},
		Required: []string{"title", "summary_points", "action_items", "sentiment"},
	}
}
