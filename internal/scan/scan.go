// Package scan - детерминированный прескан кода через tree-sitter.
// Ловит механически проверяемые паттерны до всякого LLM: такие находки
// идут с severity=5 и confidence=1.0, генеративный проход их не перебьет.
package scan

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/kitbuilder587/codecritic/internal/domain"
)

func newID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// parse строит дерево. Новый парсер на каждый вызов - так безопасно
// дергать из параллельных агентов.
func parse(ctx context.Context, code string) (*sitter.Tree, []byte, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	src := []byte(code)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	return tree, src, nil
}

func walk(n *sitter.Node, fn func(*sitter.Node)) {
	if n == nil {
		return
	}
	fn(n)
	for i := 0; i < int(n.ChildCount()); i++ {
		walk(n.Child(i), fn)
	}
}

// callSignature - каноническая форма вызова для точного сравнения:
// текст узла со схлопнутыми пробелами.
func callSignature(call *sitter.Node, src []byte) string {
	return strings.Join(strings.Fields(call.Content(src)), " ")
}

// DuplicateCalls ищет один и тот же awaited-вызов, повторенный дословно
// внутри одной функции. Битый синтаксис молча пропускаем - пусть LLM разбирается.
func DuplicateCalls(ctx context.Context, code string) []domain.Suggestion {
	tree, src, err := parse(ctx, code)
	if err != nil {
		return nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.HasError() {
		return nil
	}

	var suggestions []domain.Suggestion
	walk(root, func(n *sitter.Node) {
		if n.Type() != "function_definition" {
			return
		}

		calls := make(map[string][]int)
		walk(n.ChildByFieldName("body"), func(c *sitter.Node) {
			if c.Type() != "await" {
				return
			}
			inner := c.NamedChild(0)
			if inner == nil || inner.Type() != "call" {
				return
			}
			sig := callSignature(inner, src)
			calls[sig] = append(calls[sig], int(inner.StartPoint().Row)+1)
		})

		sigs := make([]string, 0, len(calls))
		for sig := range calls {
			sigs = append(sigs, sig)
		}
		sort.Strings(sigs)

		for _, sig := range sigs {
			lines := calls[sig]
			if len(lines) < 2 {
				continue
			}
			suggestions = append(suggestions, domain.Suggestion{
				ID:         newID("min"),
				Agent:      domain.AgentMinimalism.String(),
				Type:       "duplicate-await",
				Message:    fmt.Sprintf("CRITICAL: `%s` called %d times (lines %s). Doubles cost and latency.", sig, len(lines), joinLines(lines)),
				Severity:   int(domain.SeverityCritical),
				Confidence: 1.0,
			})
		}
	})

	return suggestions
}

// MutableConstants ищет мутабельные коллекции, присвоенные как
// модульные "константы" (имя в верхнем регистре, справа list/dict/set).
func MutableConstants(ctx context.Context, code string) []domain.Suggestion {
	tree, src, err := parse(ctx, code)
	if err != nil {
		return nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.HasError() {
		return nil
	}

	var suggestions []domain.Suggestion
	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		if stmt.Type() != "expression_statement" {
			continue
		}
		assign := stmt.NamedChild(0)
		if assign == nil || assign.Type() != "assignment" {
			continue
		}

		left := assign.ChildByFieldName("left")
		right := assign.ChildByFieldName("right")
		if left == nil || right == nil || left.Type() != "identifier" {
			continue
		}

		name := left.Content(src)
		if name != strings.ToUpper(name) || name == strings.ToLower(name) {
			continue // не похоже на константу
		}

		switch right.Type() {
		case "list", "dictionary", "set":
			suggestions = append(suggestions, domain.Suggestion{
				ID:         newID("min"),
				Agent:      domain.AgentMinimalism.String(),
				Type:       "mutable-default",
				Message:    fmt.Sprintf("CRITICAL: `%s` is a module-level mutable default (line %d). Use a tuple/frozenset or move it into a function.", name, int(stmt.StartPoint().Row)+1),
				Severity:   int(domain.SeverityCritical),
				Confidence: 1.0,
			})
		}
	}

	return suggestions
}

// UnretainedTasks ищет create_task(...), результат которого никто не хранит
// и не отменяет: голый вызов-выражение это fire-and-forget утечка.
func UnretainedTasks(ctx context.Context, code string) []domain.Suggestion {
	tree, src, err := parse(ctx, code)
	if err != nil {
		return nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.HasError() {
		return nil
	}

	var suggestions []domain.Suggestion
	walk(root, func(n *sitter.Node) {
		if n.Type() != "call" {
			return
		}

		fn := n.ChildByFieldName("function")
		if fn == nil {
			return
		}

		var name string
		switch fn.Type() {
		case "identifier":
			name = fn.Content(src)
		case "attribute":
			if attr := fn.ChildByFieldName("attribute"); attr != nil {
				name = attr.Content(src)
			}
		}
		if name != "create_task" {
			return
		}

		parent := n.Parent()
		if parent == nil || parent.Type() != "expression_statement" {
			return // сохранили в переменную или await-нули
		}

		suggestions = append(suggestions, domain.Suggestion{
			ID:         newID("sec"),
			Agent:      domain.AgentSecurity.String(),
			Type:       "unawaited-task",
			Message:    fmt.Sprintf("CRITICAL: create_task() on line %d not stored or awaited. Memory leak and potential DoS.", int(n.StartPoint().Row)+1),
			Severity:   int(domain.SeverityCritical),
			Confidence: 1.0,
		})
	})

	return suggestions
}

// InfiniteLoops ищет while True без достижимого выхода
// (break/return или вызов .cancel()).
func InfiniteLoops(ctx context.Context, code string) []domain.Suggestion {
	tree, src, err := parse(ctx, code)
	if err != nil {
		return nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.HasError() {
		return nil
	}

	var suggestions []domain.Suggestion
	walk(root, func(n *sitter.Node) {
		if n.Type() != "while_statement" {
			return
		}

		cond := n.ChildByFieldName("condition")
		if cond == nil || cond.Type() != "true" {
			return
		}

		hasExit := false
		walk(n.ChildByFieldName("body"), func(c *sitter.Node) {
			switch c.Type() {
			case "break_statement", "return_statement":
				hasExit = true
			case "call":
				if fn := c.ChildByFieldName("function"); fn != nil && fn.Type() == "attribute" {
					if attr := fn.ChildByFieldName("attribute"); attr != nil && attr.Content(src) == "cancel" {
						hasExit = true
					}
				}
			}
		})

		if !hasExit {
			suggestions = append(suggestions, domain.Suggestion{
				ID:         newID("sec"),
				Agent:      domain.AgentSecurity.String(),
				Type:       "infinite-loop",
				Message:    fmt.Sprintf("CRITICAL: while True loop on line %d has no break/return. Memory leak and DoS vector.", int(n.StartPoint().Row)+1),
				Severity:   int(domain.SeverityCritical),
				Confidence: 0.95,
			})
		}
	})

	return suggestions
}

func joinLines(lines []int) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = fmt.Sprintf("%d", l)
	}
	return strings.Join(parts, ", ")
}
