package search

import (
	"testing"
	"time"
)

func TestParse_Empty(t *testing.T) {
	q := Parse("")
	if !q.IsEmpty() {
		t.Errorf("expected empty query, got %d directives", len(q.Directives))
	}
	if q.Raw != "" {
		t.Errorf("expected empty raw, got %q", q.Raw)
	}
}

func TestParse_BareWordIsTerm(t *testing.T) {
	q := Parse("Hello")
	if len(q.Directives) != 1 {
		t.Fatalf("expected 1 directive, got %d", len(q.Directives))
	}
	d := q.Directives[0]
	if d.Type != DirTerm {
		t.Errorf("expected DirTerm, got %d", d.Type)
	}
	if len(d.Tokens) != 1 || d.Tokens[0] != "hello" {
		t.Errorf("expected tokens [hello], got %v", d.Tokens)
	}
}

func TestParse_PunctuationOnlyDropped(t *testing.T) {
	q := Parse("-- !!")
	if !q.IsEmpty() {
		t.Errorf("expected empty query, got %+v", q.Directives)
	}
}

func TestParse_ContentsDirective(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"contents:hello", "hello"},
		{"content:world", "world"},
		{"text:foo", "foo"},
		{"body:bar", "bar"},
	}

	for _, tc := range testCases {
		q := Parse(tc.input)
		if len(q.Directives) != 1 {
			t.Fatalf("input %q: expected 1 directive, got %d", tc.input, len(q.Directives))
		}
		d := q.Directives[0]
		if d.Type != DirTerm {
			t.Errorf("input %q: expected DirTerm, got %d", tc.input, d.Type)
		}
		if d.Value != tc.expected {
			t.Errorf("input %q: expected value %q, got %q", tc.input, tc.expected, d.Value)
		}
	}
}

func TestParse_ExtDirective(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"ext:go", ".go"},
		{"ext:.go", ".go"},
		{"extension:TXT", ".txt"},
		{"type:md", ".md"},
	}

	for _, tc := range testCases {
		q := Parse(tc.input)
		if len(q.Directives) != 1 {
			t.Fatalf("input %q: expected 1 directive, got %d", tc.input, len(q.Directives))
		}
		d := q.Directives[0]
		if d.Type != DirExt {
			t.Errorf("input %q: expected DirExt, got %d", tc.input, d.Type)
		}
		if d.Value != tc.expected {
			t.Errorf("input %q: expected value %q, got %q", tc.input, tc.expected, d.Value)
		}
	}
}

func TestParse_SizeDirective(t *testing.T) {
	testCases := []struct {
		input      string
		expectedOp Operator
		expectedSz int64
	}{
		{"size:>1KB", OpGreater, 1024},
		{"size:<10MB", OpLess, 10 * 1024 * 1024},
		{"size:>=1GB", OpGreaterEq, 1024 * 1024 * 1024},
		{"size:<=500B", OpLessEq, 500},
		{"size:=1024", OpEquals, 1024},
		{"size:2048", OpEquals, 2048}, // No operator means equals
	}

	for _, tc := range testCases {
		q := Parse(tc.input)
		if len(q.Directives) != 1 {
			t.Fatalf("input %q: expected 1 directive, got %d", tc.input, len(q.Directives))
		}
		d := q.Directives[0]
		if d.Type != DirSize {
			t.Errorf("input %q: expected DirSize, got %d", tc.input, d.Type)
		}
		if d.Operator != tc.expectedOp {
			t.Errorf("input %q: expected operator %d, got %d", tc.input, tc.expectedOp, d.Operator)
		}
		if d.NumValue != tc.expectedSz {
			t.Errorf("input %q: expected size %d, got %d", tc.input, tc.expectedSz, d.NumValue)
		}
	}
}

func TestParse_ModifiedDirective(t *testing.T) {
	testCases := []struct {
		input      string
		expectedOp Operator
		checkDate  func(t time.Time) bool
	}{
		{
			"modified:>2024-01-01",
			OpGreater,
			func(t time.Time) bool { return t.Year() == 2024 && t.Month() == 1 && t.Day() == 1 },
		},
		{
			"date:<2023-06-15",
			OpLess,
			func(t time.Time) bool { return t.Year() == 2023 && t.Month() == 6 && t.Day() == 15 },
		},
	}

	for _, tc := range testCases {
		q := Parse(tc.input)
		if len(q.Directives) != 1 {
			t.Fatalf("input %q: expected 1 directive, got %d", tc.input, len(q.Directives))
		}
		d := q.Directives[0]
		if d.Type != DirModified {
			t.Errorf("input %q: expected DirModified, got %d", tc.input, d.Type)
		}
		if d.Operator != tc.expectedOp {
			t.Errorf("input %q: expected operator %d, got %d", tc.input, tc.expectedOp, d.Operator)
		}
		if !tc.checkDate(d.TimeVal) {
			t.Errorf("input %q: date check failed, got %v", tc.input, d.TimeVal)
		}
	}
}

func TestParse_ModifiedRelative(t *testing.T) {
	today := time.Now()
	yesterday := today.AddDate(0, 0, -1)

	testCases := []struct {
		input string
		want  time.Time
	}{
		{"modified:today", today},
		{"modified:yesterday", yesterday},
	}

	for _, tc := range testCases {
		q := Parse(tc.input)
		if len(q.Directives) != 1 {
			t.Fatalf("input %q: expected 1 directive, got %d", tc.input, len(q.Directives))
		}
		y, m, d := tc.want.Date()
		gy, gm, gd := q.Directives[0].TimeVal.Date()
		if y != gy || m != gm || d != gd {
			t.Errorf("input %q: expected %v, got %v", tc.input, tc.want, q.Directives[0].TimeVal)
		}
	}
}

func TestParse_MultipleDirectives(t *testing.T) {
	q := Parse("filename:*.go contents:func ext:go size:>1KB")
	if len(q.Directives) != 4 {
		t.Fatalf("expected 4 directives, got %d", len(q.Directives))
	}

	expected := []DirectiveType{DirFilename, DirTerm, DirExt, DirSize}
	for i, d := range q.Directives {
		if d.Type != expected[i] {
			t.Errorf("directive %d: expected type %d, got %d", i, expected[i], d.Type)
		}
	}
}

func TestParse_QuotedValues(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{`contents:"hello world"`, "hello world"},
		{`contents:'foo bar'`, "foo bar"},
		{`filename:"my file.txt"`, "my file.txt"},
	}

	for _, tc := range testCases {
		q := Parse(tc.input)
		if len(q.Directives) != 1 {
			t.Fatalf("input %q: expected 1 directive, got %d", tc.input, len(q.Directives))
		}
		if q.Directives[0].Value != tc.expected {
			t.Errorf("input %q: expected value %q, got %q", tc.input, tc.expected, q.Directives[0].Value)
		}
	}
}

func TestQuery_Terms(t *testing.T) {
	q := Parse(`alpha "Beta alpha" ext:go contents:gamma`)
	got := q.Terms()
	want := []string{"alpha", "beta", "gamma"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("term %d: expected %q, got %q", i, want[i], got[i])
		}
	}
	if !q.HasTerms() {
		t.Error("expected HasTerms")
	}
	if Parse("ext:go").HasTerms() {
		t.Error("ext-only query should have no terms")
	}
}

func TestSplitRespectingQuotes(t *testing.T) {
	testCases := []struct {
		input    string
		expected []string
	}{
		{"foo bar baz", []string{"foo", "bar", "baz"}},
		{`"foo bar" baz`, []string{"foo bar", "baz"}},
		{`'foo bar' baz`, []string{"foo bar", "baz"}},
		{`foo "bar baz"`, []string{"foo", "bar baz"}},
		{"", []string{}},
		{"single", []string{"single"}},
	}

	for _, tc := range testCases {
		result := splitRespectingQuotes(tc.input)
		if len(result) != len(tc.expected) {
			t.Fatalf("input %q: expected %d parts, got %d: %v", tc.input, len(tc.expected), len(result), result)
		}
		for i, p := range result {
			if p != tc.expected[i] {
				t.Errorf("input %q: part %d: expected %q, got %q", tc.input, i, tc.expected[i], p)
			}
		}
	}
}

func TestParseSize(t *testing.T) {
	testCases := []struct {
		input    string
		expected int64
	}{
		{"100", 100},
		{"1KB", 1024},
		{"1kb", 1024},
		{"10MB", 10 * 1024 * 1024},
		{"1GB", 1024 * 1024 * 1024},
		{"500B", 500},
		{"1.5MB", int64(1.5 * 1024 * 1024)},
		{"invalid", 0},
		{"", 0},
	}

	for _, tc := range testCases {
		result := parseSize(tc.input)
		if result != tc.expected {
			t.Errorf("parseSize(%q): expected %d, got %d", tc.input, tc.expected, result)
		}
	}
}

func TestParseOperator(t *testing.T) {
	testCases := []struct {
		input       string
		expectedOp  Operator
		expectedVal string
	}{
		{">100", OpGreater, "100"},
		{"<50", OpLess, "50"},
		{">=200", OpGreaterEq, "200"},
		{"<=300", OpLessEq, "300"},
		{"=400", OpEquals, "400"},
		{"500", OpEquals, "500"},
	}

	for _, tc := range testCases {
		op, val := parseOperator(tc.input)
		if op != tc.expectedOp {
			t.Errorf("parseOperator(%q): expected op %d, got %d", tc.input, tc.expectedOp, op)
		}
		if val != tc.expectedVal {
			t.Errorf("parseOperator(%q): expected val %q, got %q", tc.input, tc.expectedVal, val)
		}
	}
}

func TestMatchFilename(t *testing.T) {
	testCases := []struct {
		name     string
		pattern  string
		expected bool
	}{
		// Substring match (no wildcards)
		{"test.go", "test", true},
		{"test.go", "go", true},
		{"test.go", "txt", false},
		{"Test.GO", "test.go", true},

		// Wildcard matches
		{"test.go", "*.go", true},
		{"test.go", "test.*", true},
		{"test.go", "*", true},
		{"test.go", "*.txt", false},
		{"hello_world.go", "*_*", true},
		{"helloworld.go", "*_*", false},
		{"main.GO", "*.go", true},

		// Prefix and suffix must not overlap
		{"aba", "ab*ba", false},
		{"abba", "ab*ba", true},

		// Single characters, classes and alternatives
		{"file1.go", "file?.go", true},
		{"file12.go", "file?.go", false},
		{"file1.go", "[fm]*.go", true},
		{"main.go", "[fm]*.go", true},
		{"test.go", "[fm]*.go", false},
		{"file1.go", "{file1,main}.go", true},
		{"main.go", "{file1,main}.go", true},
		{"other.go", "{file1,main}.go", false},

		// Broken pattern falls back to substring
		{"a[b.txt", "[b", true},
		{"ab.txt", "[b", false},
	}

	for _, tc := range testCases {
		d := Parse("filename:" + tc.pattern).Directives[0]
		result := matchFilename(d, tc.name)
		if result != tc.expected {
			t.Errorf("matchFilename(%q, %q): expected %v, got %v", tc.name, tc.pattern, tc.expected, result)
		}
	}
}

func TestSearch_FilenameGlob(t *testing.T) {
	docs := []Document{
		{ID: 0, Path: "/r/file1.go", Name: "file1.go"},
		{ID: 1, Path: "/r/main.go", Name: "main.go"},
	}
	ix := NewIndex("/r", time.Now(), docs, nil)

	testCases := []struct {
		query    string
		expected int
	}{
		{"filename:file?.go", 1},
		{"filename:{file1,main}.go", 2},
		{"filename:[fm]*.go", 2},
		{"filename:x*.go", 0},
	}

	for _, tc := range testCases {
		hits := ix.Search(Parse(tc.query), 0)
		if len(hits) != tc.expected {
			t.Errorf("Search(%q): expected %d hits, got %d", tc.query, tc.expected, len(hits))
		}
	}
}

func TestCompareInt(t *testing.T) {
	testCases := []struct {
		val      int64
		target   int64
		op       Operator
		expected bool
	}{
		{100, 50, OpGreater, true},
		{100, 100, OpGreater, false},
		{50, 100, OpLess, true},
		{100, 100, OpLess, false},
		{100, 100, OpGreaterEq, true},
		{99, 100, OpGreaterEq, false},
		{100, 100, OpLessEq, true},
		{101, 100, OpLessEq, false},
		{100, 100, OpEquals, true},
		{99, 100, OpEquals, false},
	}

	for _, tc := range testCases {
		result := compareInt(tc.val, tc.target, tc.op)
		if result != tc.expected {
			t.Errorf("compareInt(%d, %d, %d): expected %v, got %v", tc.val, tc.target, tc.op, tc.expected, result)
		}
	}
}

func TestCompareTime(t *testing.T) {
	base := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	before := base.Add(-24 * time.Hour)
	after := base.Add(24 * time.Hour)

	testCases := []struct {
		val      time.Time
		target   time.Time
		op       Operator
		expected bool
	}{
		{after, base, OpGreater, true},
		{base, base, OpGreater, false},
		{before, base, OpLess, true},
		{base, base, OpLess, false},
		{base, base, OpGreaterEq, true},
		{before, base, OpGreaterEq, false},
		{base, base, OpLessEq, true},
		{after, base, OpLessEq, false},
		{base.Add(time.Hour), base, OpEquals, true},
	}

	for _, tc := range testCases {
		result := compareTime(tc.val, tc.target, tc.op)
		if result != tc.expected {
			t.Errorf("compareTime(%v, %v, %d): expected %v, got %v", tc.val, tc.target, tc.op, tc.expected, result)
		}
	}
}

func TestQuery_Matches(t *testing.T) {
	doc := &Document{
		Name:    "main.go",
		Size:    2048,
		ModTime: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	testCases := []struct {
		query    string
		expected bool
	}{
		{"filename:*.go", true},
		{"filename:*.txt", false},
		{"ext:go", true},
		{"ext:md", false},
		{"size:>1KB", true},
		{"size:<1KB", false},
		{"modified:>2024-01-01", true},
		{"modified:<2024-01-01", false},
		{"someword", true}, // terms are resolved by the index
		{"ext:go size:<1KB", false},
	}

	for _, tc := range testCases {
		if got := Parse(tc.query).Matches(doc); got != tc.expected {
			t.Errorf("Parse(%q).Matches: expected %v, got %v", tc.query, tc.expected, got)
		}
	}
}
