// Package fingerprint канонизирует исходник и считает его content hash.
// Одинаковая логика = одинаковый хеш независимо от форматирования.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var (
	hashComment  = regexp.MustCompile(`#.*$`)
	slashComment = regexp.MustCompile(`//.*$`)
	// пробелы вокруг операторов и пунктуации, чтобы 'x=1' и 'x = 1' совпали
	operatorSpace = regexp.MustCompile(`\s*([=+\-*/<>!&|,;:{}()\[\]])\s*`)
)

// Normalize срезает комментарии, схлопывает пробелы, выкидывает пустые строки.
// Это не парсер: маркер комментария внутри строкового литерала тоже будет
// срезан. Для ключа кеша этого достаточно.
func Normalize(code string) string {
	var lines []string
	for _, line := range strings.Split(code, "\n") {
		line = hashComment.ReplaceAllString(line, "")
		line = slashComment.ReplaceAllString(line, "")
		line = operatorSpace.ReplaceAllString(line, "${1}")
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// Fingerprint - sha256 нормализованного кода в hex. Детерминированный.
func Fingerprint(code string) string {
	sum := sha256.Sum256([]byte(Normalize(code)))
	return hex.EncodeToString(sum[:])
}
