package agent

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kitbuilder587/codecritic/internal/domain"
	"github.com/kitbuilder587/codecritic/internal/llm"
	"github.com/kitbuilder587/codecritic/internal/scan"
)

const securitySystem = `You are a security analyzer. Respond with valid JSON only.
Focus on: SQL injection, hardcoded secrets, unsafe deserialization, shell injection.
Do NOT flag async/loop issues - that's handled separately.

Response format: {"suggestions": [{"type": "...", "message": "...", "severity": 1-5, "confidence": 0.0-1.0}]}
severity 5=exploitable, 4=high risk, 3=input validation. If safe, return {"suggestions": []}`

// NewSecurityAgent - двухфазный: tree-sitter ловит незакрепленные таски и
// вечные циклы, LLM ищет инъекции и секреты. Единственный агент с потолком 5.
func NewSecurityAgent(client llm.Client, logger *zap.Logger) Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &llmAgent{
		name:        domain.AgentSecurity,
		idPrefix:    "sec",
		system:      securitySystem,
		maxSeverity: 5,
		defSeverity: 4,
		defConf:     0.9,
		scans:       []scanFunc{scan.UnretainedTasks, scan.InfiniteLoops},
		prompt: func(code, language string) string {
			return fmt.Sprintf("Review for security:\n```%s\n%s\n```", language, code)
		},
		llm:    client,
		logger: logger,
	}
}
