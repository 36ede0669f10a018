// Package globre translates file-match glob patterns into anchored regular
// expressions understood by the index's schema matcher.
package globre

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// wildcards are the glob metacharacters that decide the anchoring branch.
const wildcards = "*?[{"

// Translate converts a glob pattern (already stripped of its extension
// suffix, so a "*.toml" file match arrives as "*") into a regular expression
// matching repository-relative paths ending in "." + ext.
//
// Wildcard globs already encode their own anchoring inside the pattern body,
// so they become bare suffix matches. Literal globs must match either a whole
// path component or the start of the path, so they get explicit alternation.
func Translate(glob, ext string) (string, error) {
	if !doublestar.ValidatePattern(glob) {
		return "", fmt.Errorf("invalid glob %q", glob)
	}

	body, err := regexBody(glob)
	if err != nil {
		return "", err
	}

	if strings.ContainsAny(glob, wildcards) {
		return fmt.Sprintf(`%s\.%s$`, body, ext), nil
	}
	return fmt.Sprintf(`^(.*(/|\\)%s\.%s|%s\.%s)$`, body, ext, body, ext), nil
}

// regexBody compiles a glob into a bare regular expression body: no anchors,
// no flags. "*" and "?" stop at path separators; "**" crosses them.
func regexBody(glob string) (string, error) {
	var sb strings.Builder
	runes := []rune(glob)

	for i := 0; i < len(runes); i++ {
		switch c := runes[i]; c {
		case '*':
			if i+1 < len(runes) && runes[i+1] == '*' {
				sb.WriteString(`.*`)
				i++
				// A separator right after "**" is already covered by ".*".
				if i+1 < len(runes) && runes[i+1] == '/' {
					i++
				}
			} else {
				sb.WriteString(`[^/]*`)
			}
		case '?':
			sb.WriteString(`[^/]`)
		case '[':
			class, end, err := characterClass(runes, i)
			if err != nil {
				return "", err
			}
			sb.WriteString(class)
			i = end
		case '{':
			alt, end, err := alternation(runes, i)
			if err != nil {
				return "", err
			}
			sb.WriteString(alt)
			i = end
		case '\\':
			if i+1 < len(runes) {
				i++
				sb.WriteString(regexp.QuoteMeta(string(runes[i])))
			}
		default:
			sb.WriteString(regexp.QuoteMeta(string(c)))
		}
	}

	return sb.String(), nil
}

// characterClass converts the glob class starting at runes[start] and returns
// its regular-expression form plus the index of the closing bracket. Glob
// negation "[!...]" maps to "[^...]".
func characterClass(runes []rune, start int) (string, int, error) {
	j := start + 1
	if j < len(runes) && (runes[j] == '!' || runes[j] == '^') {
		j++
	}
	// A "]" in first position is a literal member, not a terminator.
	if j < len(runes) && runes[j] == ']' {
		j++
	}
	for j < len(runes) && runes[j] != ']' {
		j++
	}
	if j >= len(runes) {
		return "", 0, fmt.Errorf("unterminated character class in %q", string(runes))
	}

	class := string(runes[start+1 : j])
	if strings.HasPrefix(class, "!") {
		class = "^" + class[1:]
	}
	class = strings.Replace(class, "]", `\]`, 1)
	return "[" + class + "]", j, nil
}

// alternation converts the glob brace group starting at runes[start] into a
// non-capturing regular-expression group, returning the index of the closing
// brace. Members may themselves contain wildcards or nested groups.
func alternation(runes []rune, start int) (string, int, error) {
	depth := 1
	end := start + 1
	for end < len(runes) && depth > 0 {
		switch runes[end] {
		case '{':
			depth++
		case '}':
			depth--
		}
		end++
	}
	if depth != 0 {
		return "", 0, fmt.Errorf("unterminated alternation in %q", string(runes))
	}
	end-- // closing brace

	var members []string
	memberStart := start + 1
	nested := 0
	for j := start + 1; j < end; j++ {
		switch runes[j] {
		case '{':
			nested++
		case '}':
			nested--
		case ',':
			if nested == 0 {
				members = append(members, string(runes[memberStart:j]))
				memberStart = j + 1
			}
		}
	}
	members = append(members, string(runes[memberStart:end]))

	for k, member := range members {
		body, err := regexBody(member)
		if err != nil {
			return "", 0, err
		}
		members[k] = body
	}

	return "(?:" + strings.Join(members, "|") + ")", end, nil
}
