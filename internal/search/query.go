package search

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gobwas/glob"
)

// Directive types
type DirectiveType int

const (
	DirTerm DirectiveType = iota
	DirFilename
	DirExt
	DirSize
	DirModified
)

// Comparison operators for size/date
type Operator int

const (
	OpNone Operator = iota
	OpGreater
	OpLess
	OpGreaterEq
	OpLessEq
	OpEquals
)

// Directive represents a single search directive
type Directive struct {
	Type     DirectiveType
	Value    string
	Operator Operator
	NumValue int64     // Parsed size in bytes
	TimeVal  time.Time // Parsed date
	Tokens   []string  // Folded terms, DirTerm only
	Glob     glob.Glob // Compiled name pattern, DirFilename only
}

// Query holds parsed search directives
type Query struct {
	Directives []Directive
	Raw        string
}

// Parse parses a search string into directives
// Examples:
//   - "foo" -> indexed term foo
//   - "contents:hello" -> indexed term hello
//   - "filename:*.go" -> file names matching the glob
//   - "ext:go" -> files with .go extension
//   - "size:>1MB" -> files larger than 1MB
//   - "modified:>2024-01-01" -> files modified after Jan 1, 2024
func Parse(input string) *Query {
	q := &Query{Raw: input}
	input = strings.TrimSpace(input)
	if input == "" {
		return q
	}

	// Split by spaces, but respect quotes
	parts := splitRespectingQuotes(input)

	for _, part := range parts {
		d := parseDirective(part)
		if d.Type == DirTerm && len(d.Tokens) == 0 {
			// Punctuation only; nothing to look up.
			continue
		}
		q.Directives = append(q.Directives, d)
	}

	return q
}

func splitRespectingQuotes(s string) []string {
	var parts []string
	var current strings.Builder
	inQuotes := false
	quoteChar := rune(0)

	for _, r := range s {
		switch {
		case (r == '"' || r == '\'') && !inQuotes:
			inQuotes = true
			quoteChar = r
		case r == quoteChar && inQuotes:
			inQuotes = false
			quoteChar = 0
		case r == ' ' && !inQuotes:
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}

func parseDirective(s string) Directive {
	// Check for directive:value pattern
	if idx := strings.Index(s, ":"); idx > 0 {
		directive := strings.ToLower(s[:idx])
		value := s[idx+1:]
		value = strings.Trim(value, "\"'")

		switch directive {
		case "filename", "name", "file":
			return filenameDirective(value)

		case "contents", "content", "text", "body":
			return termDirective(value)

		case "ext", "extension", "type":
			if !strings.HasPrefix(value, ".") {
				value = "." + value
			}
			return Directive{Type: DirExt, Value: strings.ToLower(value)}

		case "size":
			op, numStr := parseOperator(value)
			bytes := parseSize(numStr)
			return Directive{Type: DirSize, Value: value, Operator: op, NumValue: bytes}

		case "modified", "date", "mtime":
			op, dateStr := parseOperator(value)
			t := parseDate(dateStr)
			return Directive{Type: DirModified, Value: value, Operator: op, TimeVal: t}
		}
	}

	// Default to an indexed term lookup
	return termDirective(s)
}

func termDirective(value string) Directive {
	return Directive{Type: DirTerm, Value: value, Tokens: Tokenize(value)}
}

func parseOperator(s string) (Operator, string) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, ">="):
		return OpGreaterEq, strings.TrimSpace(s[2:])
	case strings.HasPrefix(s, "<="):
		return OpLessEq, strings.TrimSpace(s[2:])
	case strings.HasPrefix(s, ">"):
		return OpGreater, strings.TrimSpace(s[1:])
	case strings.HasPrefix(s, "<"):
		return OpLess, strings.TrimSpace(s[1:])
	case strings.HasPrefix(s, "="):
		return OpEquals, strings.TrimSpace(s[1:])
	default:
		return OpEquals, s
	}
}

// parseSize converts size strings like "1KB", "10MB", "1GB" to bytes
func parseSize(s string) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))

	multiplier := int64(1)
	numStr := s

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = s[:len(s)-2]
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = s[:len(s)-2]
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = s[:len(s)-2]
	case strings.HasSuffix(s, "B"):
		numStr = s[:len(s)-1]
	}

	n, err := strconv.ParseFloat(strings.TrimSpace(numStr), 64)
	if err != nil {
		return 0
	}

	return int64(n * float64(multiplier))
}

// parseDate parses date strings like "2024-01-01", "2024-01", "today", "yesterday"
func parseDate(s string) time.Time {
	s = strings.ToLower(strings.TrimSpace(s))
	now := time.Now()

	switch s {
	case "today":
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case "yesterday":
		y, m, d := now.AddDate(0, 0, -1).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case "week":
		return now.AddDate(0, 0, -7)
	case "month":
		return now.AddDate(0, -1, 0)
	case "year":
		return now.AddDate(-1, 0, 0)
	}

	formats := []string{
		"2006-01-02",
		"2006-01",
		"2006/01/02",
		"01/02/2006",
		"Jan 2, 2006",
	}

	for _, layout := range formats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}

	return time.Time{}
}

// Terms returns the folded index terms the query looks up, in order and
// without duplicates.
func (q *Query) Terms() []string {
	var terms []string
	seen := make(map[string]bool)
	for _, d := range q.Directives {
		if d.Type != DirTerm {
			continue
		}
		for _, tok := range d.Tokens {
			if !seen[tok] {
				seen[tok] = true
				terms = append(terms, tok)
			}
		}
	}
	return terms
}

// Matches checks the query's metadata filters against doc. Term directives
// are resolved through the index and are ignored here.
func (q *Query) Matches(doc *Document) bool {
	for _, d := range q.Directives {
		if !matchDirective(d, doc) {
			return false
		}
	}
	return true
}

func matchDirective(d Directive, doc *Document) bool {
	switch d.Type {
	case DirFilename:
		return matchFilename(d, doc.Name)

	case DirExt:
		return strings.ToLower(filepath.Ext(doc.Name)) == d.Value

	case DirSize:
		return compareInt(doc.Size, d.NumValue, d.Operator)

	case DirModified:
		if d.TimeVal.IsZero() {
			return true
		}
		return compareTime(doc.ModTime, d.TimeVal, d.Operator)
	}

	return true
}

// filenameDirective builds a case-insensitive name filter. Patterns with
// glob syntax (*, ?, [...], {a,b}) must match the whole name; anything else,
// including a pattern that fails to compile, is a substring match.
func filenameDirective(value string) Directive {
	d := Directive{Type: DirFilename, Value: strings.ToLower(value)}
	if strings.ContainsAny(d.Value, "*?[{") {
		if g, err := glob.Compile(d.Value); err == nil {
			d.Glob = g
		}
	}
	return d
}

func matchFilename(d Directive, name string) bool {
	name = strings.ToLower(name)
	if d.Glob != nil {
		return d.Glob.Match(name)
	}
	return strings.Contains(name, d.Value)
}

func compareInt(val, target int64, op Operator) bool {
	switch op {
	case OpGreater:
		return val > target
	case OpLess:
		return val < target
	case OpGreaterEq:
		return val >= target
	case OpLessEq:
		return val <= target
	default:
		return val == target
	}
}

func compareTime(val, target time.Time, op Operator) bool {
	switch op {
	case OpGreater:
		return val.After(target)
	case OpLess:
		return val.Before(target)
	case OpGreaterEq:
		return !val.Before(target)
	case OpLessEq:
		return !val.After(target)
	default:
		// For equals, compare just the date part
		vy, vm, vd := val.Date()
		ty, tm, td := target.Date()
		return vy == ty && vm == tm && vd == td
	}
}

// HasTerms returns true if the query needs an index lookup
func (q *Query) HasTerms() bool {
	for _, d := range q.Directives {
		if d.Type == DirTerm {
			return true
		}
	}
	return false
}

// IsEmpty returns true if query has no directives
func (q *Query) IsEmpty() bool {
	return len(q.Directives) == 0
}
