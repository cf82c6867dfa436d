package agent

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kitbuilder587/codecritic/internal/domain"
	"github.com/kitbuilder587/codecritic/internal/llm"
)

const styleSystem = `You are a code style analyzer. You MUST respond with valid JSON only.

SEVERITY SCALE: 1=hint, 2=info, 3=warning (style issues are usually 1-3)

Focus on:
- line length (flag >100 chars) -> severity 2
- inconsistent indentation -> severity 3
- trailing whitespace -> severity 1
- blank line usage -> severity 1
- bracket/brace placement -> severity 2

Response format:
{"suggestions": [{"type": "style-issue-type", "message": "description", "severity": 1-3, "confidence": 0.0-1.0}]}

Be specific about line numbers. Skip nitpicks. If code looks fine, return {"suggestions": []}.`

// NewStyleAgent - косметика: длина строк, отступы, пробелы. Потолок severity 3.
func NewStyleAgent(client llm.Client, logger *zap.Logger) Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &llmAgent{
		name:        domain.AgentStyle,
		idPrefix:    "sty",
		system:      styleSystem,
		maxSeverity: 3,
		defSeverity: 2,
		defConf:     0.7,
		prompt: func(code, language string) string {
			return fmt.Sprintf("Language: %s\n\n```\n%s\n```", language, code)
		},
		llm:    client,
		logger: logger,
	}
}
