package insight

import (
	"fmt"
	"strings"

	"github.com/dgallion1/docsense/internal/chunker"
)

const insightPrompt = `You are helping a %s with their task: %s

Analyze ONLY the following text and provide insights that are directly supported by it.

Text to analyze:
%s
%s
Format your response as:
TAKEAWAY: [key takeaway relevant to the %s]
FACT: [specific fact or detail mentioned in the text]
CONNECTION: [how this content connects to the task]

Keep each insight under 2 sentences.`

const topicsPrompt = `Analyze the following text from page %d of a document and extract 2-3 key topics, concepts or subjects that could have interesting external facts.
Each topic should be 1-4 words.

Text:
%s

Return ONLY a JSON array of strings, like: ["topic1", "topic2"]`

const factPrompt = `Based on the topic %q mentioned in a document, generate ONE surprising, factually accurate fact that is NOT stated in the document text below.

Document context (do not repeat information from this):
%s

Respond with ONLY a JSON object:
{"fact": "Did you know that ...?", "topic": %q, "category": "science|history|technology|nature|culture|other"}`

// Input caps on prompt text, in estimated tokens.
const (
	maxInsightTokens = 400
	maxTopicTokens   = 300
	maxFactTokens    = 160
)

func buildInsightPrompt(text, persona, job, extra string) string {
	if persona == "" {
		persona = "reader"
	}
	if job == "" {
		job = "understand the document"
	}
	ctxLine := ""
	if extra = strings.TrimSpace(extra); extra != "" {
		ctxLine = fmt.Sprintf("\nAdditional context: %s\n", chunker.Truncate(extra, maxFactTokens))
	}
	return fmt.Sprintf(insightPrompt, persona, job, chunker.Truncate(text, maxInsightTokens), ctxLine, persona)
}

func buildTopicsPrompt(page int, text string) string {
	return fmt.Sprintf(topicsPrompt, page, chunker.Truncate(text, maxTopicTokens))
}

func buildFactPrompt(topic, pageText string) string {
	return fmt.Sprintf(factPrompt, topic, chunker.Truncate(pageText, maxFactTokens), topic)
}
