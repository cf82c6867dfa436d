package domain

// Feedback - событие обратной связи из очереди. Воркер применяет его к весам
// и удаляет сообщение только после успешного апдейта.
type Feedback struct {
	AnalysisID   string `json:"analysis_id"`
	SuggestionID string `json:"suggestion_id"`
	Agent        string `json:"agent"`
	Accepted     bool   `json:"accepted"`
	Rating       int    `json:"rating"` // 1-5
}

func (f Feedback) Validate() error {
	if !AgentName(f.Agent).IsValid() {
		return ErrUnknownAgent
	}
	if f.Rating < 1 || f.Rating > 5 {
		return ErrInvalidRating
	}
	return nil
}
