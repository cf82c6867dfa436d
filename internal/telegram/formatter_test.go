package telegram

import (
	"strings"
	"testing"

	"github.com/kitbuilder587/codecritic/internal/domain"
)

func TestFormatAnalysisResult(t *testing.T) {
	res := &domain.AnalysisResult{
		AnalysisID: "an-0123456789ab",
		Suggestions: []domain.Suggestion{
			{ID: "sec-1a2b3c4d", Agent: "security", Message: "eval of user input", Severity: 5, Confidence: 0.9, Score: 0.9},
			{ID: "sty-deadbeef", Agent: "style", Message: "line <too> long", Severity: 2, Confidence: 0.7, Score: 0.28},
		},
		AgentResults: []domain.AgentResult{
			{Agent: "style"},
			{Agent: "naming", Error: "timeout"},
		},
	}

	out := FormatAnalysisResult(res)

	if !strings.Contains(out, "Найдено замечаний: 2") {
		t.Error("missing suggestion count")
	}
	if !strings.Contains(out, "sec-1a2b3c4d") {
		t.Error("missing suggestion id for feedback")
	}
	// HTML в сообщениях экранируется
	if !strings.Contains(out, "line &lt;too&gt; long") {
		t.Error("message not HTML-escaped")
	}
	if !strings.Contains(out, "Без ответа: naming") {
		t.Error("failed agents not reported")
	}
	if strings.Contains(out, "из кэша") {
		t.Error("cache note present for fresh result")
	}
}

func TestFormatAnalysisResult_CleanCode(t *testing.T) {
	res := &domain.AnalysisResult{
		AnalysisID:  "an-0123456789ab",
		FromCache:   true,
		Suggestions: []domain.Suggestion{},
	}

	out := FormatAnalysisResult(res)

	if !strings.Contains(out, "Замечаний нет") {
		t.Error("missing clean-code message")
	}
	if !strings.Contains(out, "из кэша") {
		t.Error("missing cache note")
	}
}

func TestFormatWeights_SortedByInfluence(t *testing.T) {
	out := FormatWeights(map[string]float64{
		"style":      0.6,
		"security":   1.8,
		"naming":     1.0,
		"docstring":  1.0,
		"minimalism": 1.4,
	})

	secIdx := strings.Index(out, "security")
	minIdx := strings.Index(out, "minimalism")
	styIdx := strings.Index(out, "style")
	if !(secIdx < minIdx && minIdx < styIdx) {
		t.Errorf("weights not sorted by influence:\n%s", out)
	}
}

func TestSplitMessage(t *testing.T) {
	t.Run("short text untouched", func(t *testing.T) {
		parts := SplitMessage("hello", 100)
		if len(parts) != 1 || parts[0] != "hello" {
			t.Errorf("SplitMessage() = %v", parts)
		}
	})

	t.Run("splits on whitespace", func(t *testing.T) {
		text := strings.Repeat("word ", 100)
		parts := SplitMessage(text, 128)

		if len(parts) < 2 {
			t.Fatal("expected multiple parts")
		}
		var total int
		for _, p := range parts {
			if len(p) > 128 {
				t.Errorf("part length %d exceeds limit", len(p))
			}
			total += len(p)
		}
		if total != len(text) {
			t.Errorf("content lost: %d of %d bytes", total, len(text))
		}
	})

	t.Run("never cuts inside a tag", func(t *testing.T) {
		text := strings.Repeat("x", 90) + " <b>bold text here</b> " + strings.Repeat("y", 90)
		for _, p := range SplitMessage(text, 100) {
			if strings.Count(p, "<") != strings.Count(p, ">") {
				t.Errorf("part ends mid-tag: %q", p)
			}
		}
	})
}

func TestSeverityIcon(t *testing.T) {
	if severityIcon(5) == severityIcon(2) {
		t.Error("critical and info must render differently")
	}
}
