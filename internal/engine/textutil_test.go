package engine

import (
	"strings"
	"testing"
)

func TestSnakeCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"id", "id"},
		{"subClassification", "sub_classification"},
		{"areaWhereValue", "area_where_value"},
		{"listingDate", "listing_date"},
		{"Title", "title"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SnakeCase(tt.in); got != tt.want {
				t.Errorf("SnakeCase(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsDigits(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"12", true},
		{"0", true},
		{"", false},
		{"a1", false},
		{"1.5", false},
	}
	for _, tt := range tests {
		if got := IsDigits(tt.in); got != tt.want {
			t.Errorf("IsDigits(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCleanHTML(t *testing.T) {
	if got := CleanHTML("  <p>Hello <b>world</b></p> "); got != "Hello world" {
		t.Errorf("CleanHTML() = %q, want %q", got, "Hello world")
	}
}

func TestHTMLToText(t *testing.T) {
	got := HTMLToText("<p>We are hiring a <strong>Data Analyst</strong>.</p><ul><li>SQL</li><li>Python</li></ul>")
	for _, want := range []string{"Data Analyst", "SQL", "Python"} {
		if !strings.Contains(got, want) {
			t.Errorf("HTMLToText() = %q, missing %q", got, want)
		}
	}
	if strings.Contains(got, "<p>") {
		t.Errorf("HTMLToText() kept tags: %q", got)
	}
}

func TestHTMLToTextEmpty(t *testing.T) {
	if got := HTMLToText("   "); got != "" {
		t.Errorf("HTMLToText(blank) = %q, want empty", got)
	}
}

func TestHTMLTextFallback(t *testing.T) {
	got := htmlTextFallback("<div><p>First  line</p><p>Second</p></div><script>x()</script>")
	if got != "First line\nSecond" {
		t.Errorf("htmlTextFallback() = %q", got)
	}
}
