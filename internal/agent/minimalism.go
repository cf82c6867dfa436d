package agent

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kitbuilder587/codecritic/internal/domain"
	"github.com/kitbuilder587/codecritic/internal/llm"
	"github.com/kitbuilder587/codecritic/internal/scan"
)

const minimalismSystem = `You are a code minimalism analyzer. Respond with valid JSON only.
Focus on issues AST analysis might miss: unused imports, dead code paths, redundant logic.
Do NOT flag duplicate function calls - that's handled separately.

Response format: {"suggestions": [{"type": "...", "message": "...", "severity": 1-5, "confidence": 0.0-1.0}]}
severity 3=unused imports, 2=simplification, 1=nits. If clean, return {"suggestions": []}`

// NewMinimalismAgent - двухфазный: сначала tree-sitter ловит дубли вызовов и
// мутабельные "константы" (severity=5), потом LLM ищет нюансы с потолком 4.
func NewMinimalismAgent(client llm.Client, logger *zap.Logger) Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &llmAgent{
		name:        domain.AgentMinimalism,
		idPrefix:    "min",
		system:      minimalismSystem,
		maxSeverity: 4, // severity 5 принадлежит прескану
		defSeverity: 2,
		defConf:     0.8,
		scans:       []scanFunc{scan.DuplicateCalls, scan.MutableConstants},
		prompt: func(code, language string) string {
			return fmt.Sprintf("```%s\n%s\n```", language, code)
		},
		llm:    client,
		logger: logger,
	}
}
