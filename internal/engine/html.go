package engine

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
)

// HTMLToText renders an ad's HTML body as readable markdown text.
// Falls back to goquery text extraction, then tag stripping, on failure.
func HTMLToText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	md, err := htmltomarkdown.ConvertString(html)
	if err == nil {
		if text := strings.TrimSpace(md); text != "" {
			return text
		}
	}
	return htmlTextFallback(html)
}

// htmlTextFallback extracts visible text with goquery, one block per line.
func htmlTextFallback(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return CleanHTML(html)
	}
	doc.Find("script, style, noscript").Remove()

	var lines []string
	doc.Find("p, li, h1, h2, h3, h4, h5, h6, div").Each(func(_ int, s *goquery.Selection) {
		if s.Children().Filter("p, li, div, ul, ol").Length() > 0 {
			return
		}
		if t := strings.Join(strings.Fields(s.Text()), " "); t != "" {
			lines = append(lines, t)
		}
	})
	if len(lines) == 0 {
		return strings.Join(strings.Fields(doc.Text()), " ")
	}
	return strings.Join(lines, "\n")
}
