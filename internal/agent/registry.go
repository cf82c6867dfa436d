package agent

import (
	"go.uber.org/zap"

	"github.com/kitbuilder587/codecritic/internal/llm"
)

// NewAllAgents собирает пятерку в порядке регистрации. Порядок фиксирован:
// от него зависит порядок результатов диспетчера.
func NewAllAgents(client llm.Client, logger *zap.Logger) []Agent {
	if logger == nil {
		logger = zap.NewNop()
	}

	return []Agent{
		NewStyleAgent(client, logger),
		NewNamingAgent(client, logger),
		NewMinimalismAgent(client, logger),
		NewDocstringAgent(client, logger),
		NewSecurityAgent(client, logger),
	}
}
