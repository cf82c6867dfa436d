package agent

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kitbuilder587/codecritic/internal/domain"
	"github.com/kitbuilder587/codecritic/internal/llm"
)

const namingSystem = `Analyze variable/function/class names in this code. Return JSON.

Bad naming patterns to catch:
- Misleading names like 'data' when it's actually a User object (sev 4)
- Single letters outside of loop indices (sev 3)
- Mixed casing styles in same file, snake_case vs camelCase (sev 3)
- Cryptic abbreviations like 'usr_mgr_svc' (sev 2)
- Booleans that don't read like yes/no questions (sev 2)

Keep severity at 4 max. Naming is annoying but rarely a prod incident.

JSON format: {"suggestions": [{"type": "...", "message": "...", "severity": 1-4, "confidence": 0.0-1.0}]}
Empty array if names look fine.`

// NewNamingAgent - имена переменных/функций/классов. Потолок severity 4:
// плохое имя само по себе прод не роняет.
func NewNamingAgent(client llm.Client, logger *zap.Logger) Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &llmAgent{
		name:        domain.AgentNaming,
		idPrefix:    "nam",
		system:      namingSystem,
		maxSeverity: 4,
		defSeverity: 2,
		defConf:     0.75,
		prompt: func(code, language string) string {
			return fmt.Sprintf("%s:\n```\n%s\n```", language, code)
		},
		llm:    client,
		logger: logger,
	}
}
