package optimizer

import "fmt"

// systemInstruction pins the response contract. Models still wrap the JSON
// in prose or fences often enough that ExtractJSON stays necessary.
const systemInstruction = `You MUST reply with ONLY valid JSON.
NO explanations. NO markdown. NO backticks.

Response shape:
{
  "optimized_code": "string",
  "suggestions": [
    {
      "id": "S1",
      "title": "short title",
      "detail": "full explanation"
    }
  ],
  "metrics": {
    "language": "c",
    "loc_before": 0,
    "loc_after": 0,
    "reduction": 0
  }
}
You MUST follow this structure.`

const userTemplate = `Optimize this code.

Improve:
- dead code removal
- better naming
- safer input
- modularity
- readability
- remove unused variables
- remove duplicate logic

Language: %s

Code:
%s`

// BuildPrompt composes the instruction preamble with the per-request
// template. Code is embedded verbatim, never escaped or truncated.
func BuildPrompt(language, code string) string {
	return systemInstruction + "\n" + fmt.Sprintf(userTemplate, language, code)
}
