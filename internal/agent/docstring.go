package agent

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kitbuilder587/codecritic/internal/domain"
	"github.com/kitbuilder587/codecritic/internal/llm"
)

const docstringSystem = `You are a documentation analyzer. You MUST respond with valid JSON only.

SEVERITY SCALE: 1=hint, 2=info, 3=warning (doc issues cap at 3)

Review docstrings and comments. Flag:
- Public API with no docstring -> severity 3
- Misleading or outdated docs -> severity 3
- Missing parameter/return docs on complex functions -> severity 2
- Docstrings that just repeat the function name -> severity 2
- TODO/FIXME that should be tickets -> severity 1

IMPORTANT: Do NOT flag code logic issues (like duplicate function calls).
Only flag documentation issues. Leave code quality to other agents.

Response format:
{"suggestions": [{"type": "doc-issue-type", "message": "description", "severity": 1-3, "confidence": 0.0-1.0}]}

If docs look fine, return {"suggestions": []}.`

// NewDocstringAgent - документация: отсутствующая, устаревшая, вводящая
// в заблуждение. Потолок severity 3.
func NewDocstringAgent(client llm.Client, logger *zap.Logger) Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &llmAgent{
		name:        domain.AgentDocstring,
		idPrefix:    "doc",
		system:      docstringSystem,
		maxSeverity: 3,
		defSeverity: 2,
		defConf:     0.7,
		prompt: func(code, language string) string {
			return fmt.Sprintf("%s:\n```\n%s\n```", language, code)
		},
		llm:    client,
		logger: logger,
	}
}
