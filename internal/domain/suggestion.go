package domain

import "strings"

// Severity - шкала важности находки. 4 намеренно пропущена:
// между warning и critical промежуточных состояний нет.
type Severity int

const (
	SeverityHint     Severity = 1
	SeverityInfo     Severity = 2
	SeverityWarning  Severity = 3
	SeverityCritical Severity = 5
)

func (s Severity) IsValid() bool {
	switch s {
	case SeverityHint, SeverityInfo, SeverityWarning, SeverityCritical:
		return true
	}
	return false
}

type AgentName string

const (
	AgentStyle      AgentName = "style"
	AgentNaming     AgentName = "naming"
	AgentMinimalism AgentName = "minimalism"
	AgentDocstring  AgentName = "docstring"
	AgentSecurity   AgentName = "security"
)

// AllAgents - фиксированный закрытый набор агентов в порядке регистрации.
// Диспетчер, мерджер и хранилище весов рассчитывают ровно на эти пять имен.
var AllAgents = []AgentName{AgentStyle, AgentNaming, AgentMinimalism, AgentDocstring, AgentSecurity}

func (a AgentName) IsValid() bool {
	switch a {
	case AgentStyle, AgentNaming, AgentMinimalism, AgentDocstring, AgentSecurity:
		return true
	}
	return false
}

func (a AgentName) String() string { return string(a) }

// Suggestion - одна находка одного агента. После создания не мутирует:
// пересчет score дает новую копию, иначе сломаем закешированные результаты.
type Suggestion struct {
	ID         string  `json:"id"`
	Agent      string  `json:"agent"`
	Type       string  `json:"type"`
	Message    string  `json:"message"`
	Severity   int     `json:"severity"`
	Confidence float64 `json:"confidence"`
	Score      float64 `json:"score"` // после взвешивания может быть > 1.0
}

func (s Suggestion) Validate() error {
	if strings.TrimSpace(s.Message) == "" {
		return ErrEmptyMessage
	}
	if s.Severity < 1 || s.Severity > 5 {
		return ErrInvalidSeverity
	}
	if s.Confidence < 0 || s.Confidence > 1 {
		return ErrInvalidConfidence
	}
	return nil
}

// AgentResult - итог работы одного агента за один dispatch.
// Error заполняется только если агент не выдал ничего пригодного.
type AgentResult struct {
	Agent       string       `json:"agent"`
	Suggestions []Suggestion `json:"suggestions"`
	TookMs      int64        `json:"took_ms"`
	Error       string       `json:"error,omitempty"`
}

// AnalysisResult - ответ пайплайна. Кешируется как есть: на cache hit
// suggestions и weights не пересчитываются по живому хранилищу весов.
type AnalysisResult struct {
	AnalysisID   string             `json:"analysis_id"`
	Fingerprint  string             `json:"fingerprint"`
	FromCache    bool               `json:"from_cache"`
	Suggestions  []Suggestion       `json:"suggestions"`
	AgentWeights map[string]float64 `json:"agent_weights"`
	AgentResults []AgentResult      `json:"agent_results,omitempty"`
	RequestID    string             `json:"request_id"`
}
