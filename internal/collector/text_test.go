package collector

import "testing"

func TestCleanText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"strip tags", "<p>OpenAI 发布<b>新模型</b></p>", "OpenAI 发布新模型"},
		{"unescape entities", "A &amp; B &lt;测试&gt;", "A & B <测试>"},
		{"collapse whitespace", "  多个\n\t 空白   字符 ", "多个 空白 字符"},
		{"empty", "", ""},
		{"plain text untouched", "国产大模型进展", "国产大模型进展"},
	}

	for _, tc := range cases {
		if got := CleanText(tc.in); got != tc.want {
			t.Errorf("%s: CleanText(%q) = %q, want %q", tc.name, tc.in, got, tc.want)
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	cases := []struct {
		in    string
		limit int
		want  string
	}{
		{"人工智能大模型", 4, "人工智能…"},
		{"短", 4, "短"},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc…"},
		{"whatever", 0, ""},
	}

	for _, tc := range cases {
		if got := truncateRunes(tc.in, tc.limit); got != tc.want {
			t.Errorf("truncateRunes(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
		}
	}
}

func TestParseFeedTime(t *testing.T) {
	if got := parseFeedTime("2025-06-01T08:30:00Z"); got.IsZero() {
		t.Fatalf("RFC3339 time should parse, got zero")
	}
	if got := parseFeedTime("2025-06-01 08:30:00"); got.IsZero() {
		t.Fatalf("plain datetime should parse, got zero")
	}
	if got := parseFeedTime("not-a-date"); !got.IsZero() {
		t.Fatalf("invalid time should give zero value, got %v", got)
	}
	if got := parseFeedTime(""); !got.IsZero() {
		t.Fatalf("empty time should give zero value, got %v", got)
	}
}
