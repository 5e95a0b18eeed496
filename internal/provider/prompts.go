package provider

import "fmt"

func searchSystemPrompt(limit int) string {
	return fmt.Sprintf(`You are an assistant that finds relevant articles and information sources.

Your job:
1. Find the %d most relevant and authoritative articles/sources on the given topic
2. Return the result as strict JSON

Response format (JSON only):
{
  "sources": [
    {
      "title": "Article title",
      "url": "https://link-to-article.com",
      "description": "Short description"
    }
  ]
}

Requirements:
- Find real, existing articles and sources
- Prefer authoritative sources (research papers, established publications)
- Return ONLY valid JSON, no extra text
- If you cannot find articles, return an empty sources array: []
- Every URL must be complete and valid`, limit)
}

const explainSystemPrompt = `You are a day-planning assistant. Given one task, its assigned time of day
and the supporting sources, write a single short justification (1-2 sentences)
for why this time of day suits the task. Mention the sources by title when
any are given. Plain text only, no JSON, no markdown.`
