// Package sysconfig parses shell-style KEY=value files such as an instance's tomcat.conf.
package sysconfig

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/conn-castle/pki-deploy/internal/messages"
)

// Values holds parsed assignments.
type Values struct {
	values map[string]string
}

// Get returns the value for key, or "" when it is not set.
func (v *Values) Get(key string) string {
	if v == nil {
		return ""
	}
	return v.values[key]
}

// Parse reads shell-style assignments. Later assignments win; $NAME and ${NAME}
// in unquoted and double-quoted values expand to earlier assignments.
func Parse(content string) (*Values, error) {
	v := &Values{values: make(map[string]string)}
	scanner := bufio.NewScanner(strings.NewReader(content))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		key, value, ok, err := v.parseLine(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf(messages.SysconfigLineErrorFmt, lineNo, err)
		}
		if !ok {
			continue
		}
		v.values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf(messages.SysconfigReadFailedFmt, err)
	}
	return v, nil
}

func (v *Values) parseLine(line string) (string, string, bool, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", "", false, nil
	}
	trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "export "))
	idx := strings.IndexByte(trimmed, '=')
	if idx <= 0 {
		return "", "", false, fmt.Errorf(messages.SysconfigExpectedKeyValue)
	}
	key := strings.TrimSpace(trimmed[:idx])
	if key == "" || strings.ContainsAny(key, " \t") {
		return "", "", false, fmt.Errorf(messages.SysconfigExpectedKeyValue)
	}
	raw := strings.TrimSpace(trimmed[idx+1:])
	switch {
	case strings.HasPrefix(raw, `'`):
		end := strings.IndexByte(raw[1:], '\'')
		if end < 0 {
			return "", "", false, fmt.Errorf(messages.SysconfigUnterminatedQuotedValue)
		}
		if err := checkSuffix(raw[end+2:]); err != nil {
			return "", "", false, err
		}
		return key, raw[1 : end+1], true, nil
	case strings.HasPrefix(raw, `"`):
		end := closingQuote(raw)
		if end < 0 {
			return "", "", false, fmt.Errorf(messages.SysconfigUnterminatedQuotedValue)
		}
		if err := checkSuffix(raw[end+1:]); err != nil {
			return "", "", false, err
		}
		return key, v.expand(raw[1:end], true), true, nil
	default:
		if hash := strings.Index(raw, " #"); hash >= 0 {
			raw = strings.TrimSpace(raw[:hash])
		}
		return key, v.expand(raw, false), true, nil
	}
}

// closingQuote returns the index of the first unescaped double quote after position 0.
func closingQuote(value string) int {
	escaped := false
	for i := 1; i < len(value); i++ {
		switch {
		case escaped:
			escaped = false
		case value[i] == '\\':
			escaped = true
		case value[i] == '"':
			return i
		}
	}
	return -1
}

func checkSuffix(suffix string) error {
	trimmed := strings.TrimSpace(suffix)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil
	}
	return fmt.Errorf(messages.SysconfigInvalidQuotedSuffix)
}

// expand substitutes $NAME and ${NAME} with earlier assignments; unknown names expand to "".
// With escapes set, a backslash before \, " or $ yields that character literally.
func (v *Values) expand(s string, escapes bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if escapes && s[i] == '\\' && i+1 < len(s) && strings.IndexByte(`\"$`, s[i+1]) >= 0 {
			i++
			b.WriteByte(s[i])
			continue
		}
		if s[i] != '$' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		if s[i+1] == '{' {
			end := strings.IndexByte(s[i:], '}')
			if end < 0 {
				b.WriteString(s[i:])
				break
			}
			b.WriteString(v.values[s[i+2:i+end]])
			i += end
			continue
		}
		j := i + 1
		for j < len(s) && isNameByte(s[j]) {
			j++
		}
		if j == i+1 {
			b.WriteByte('$')
			continue
		}
		b.WriteString(v.values[s[i+1:j]])
		i = j - 1
	}
	return b.String()
}

func isNameByte(c byte) bool {
	return c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
