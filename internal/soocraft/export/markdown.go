package export

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// The converters cover the Markdown the generator actually produces:
// ATX headings, paragraphs, bullet and numbered lists, pipe tables, and
// bold/italic/code inline spans. They are not general Markdown engines.

var (
	headingRe  = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	bulletRe   = regexp.MustCompile(`^[-*]\s+(.*)$`)
	numberedRe = regexp.MustCompile(`^\d+\.\s+(.*)$`)
	tableRowRe = regexp.MustCompile(`^\|(.+)\|\s*$`)
	tableSepRe = regexp.MustCompile(`^\|[\s:|-]+\|\s*$`)
	boldRe     = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicRe   = regexp.MustCompile(`\*(.+?)\*`)
	codeSpanRe = regexp.MustCompile("`([^`]+)`")
	checkboxRe = regexp.MustCompile(`^\[([ xX])\]\s+(.*)$`)
)

func splitTableRow(line string) []string {
	m := tableRowRe.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	parts := strings.Split(m[1], "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

func inlineHTML(text string) string {
	out := html.EscapeString(text)
	out = boldRe.ReplaceAllString(out, "<strong>$1</strong>")
	out = italicRe.ReplaceAllString(out, "<em>$1</em>")
	out = codeSpanRe.ReplaceAllString(out, "<code>$1</code>")
	return out
}

// ToHTML renders Markdown as a standalone HTML document suitable for
// printing or pasting into a word processor.
func ToHTML(markdown, title string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	b.WriteString(`<style>
body { font-family: Calibri, Arial, sans-serif; max-width: 52em; margin: 2em auto; line-height: 1.5; color: #1a1a1a; }
h1 { border-bottom: 2px solid #2b5797; padding-bottom: 0.2em; }
h2 { color: #2b5797; margin-top: 1.5em; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #999; padding: 0.4em 0.8em; text-align: left; }
th { background: #eef2f8; }
code { background: #f4f4f4; padding: 0 0.25em; }
</style>
`)
	b.WriteString("</head>\n<body>\n")

	lines := strings.Split(markdown, "\n")
	var listTag string
	var inTable bool
	closeList := func() {
		if listTag != "" {
			fmt.Fprintf(&b, "</%s>\n", listTag)
			listTag = ""
		}
	}
	closeTable := func() {
		if inTable {
			b.WriteString("</table>\n")
			inTable = false
		}
	}

	for i := 0; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], " \t")
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			closeList()
			closeTable()
		case headingRe.MatchString(trimmed):
			closeList()
			closeTable()
			m := headingRe.FindStringSubmatch(trimmed)
			level := len(m[1])
			fmt.Fprintf(&b, "<h%d>%s</h%d>\n", level, inlineHTML(m[2]), level)
		case tableRowRe.MatchString(trimmed):
			if tableSepRe.MatchString(trimmed) {
				continue
			}
			cells := splitTableRow(trimmed)
			tag := "td"
			if !inTable {
				closeList()
				b.WriteString("<table>\n")
				inTable = true
				// First row is the header when a separator follows.
				if i+1 < len(lines) && tableSepRe.MatchString(strings.TrimSpace(lines[i+1])) {
					tag = "th"
				}
			}
			b.WriteString("<tr>")
			for _, c := range cells {
				fmt.Fprintf(&b, "<%s>%s</%s>", tag, inlineHTML(c), tag)
			}
			b.WriteString("</tr>\n")
		case bulletRe.MatchString(trimmed):
			closeTable()
			if listTag != "ul" {
				closeList()
				b.WriteString("<ul>\n")
				listTag = "ul"
			}
			item := bulletRe.FindStringSubmatch(trimmed)[1]
			if m := checkboxRe.FindStringSubmatch(item); m != nil {
				mark := "&#9744;"
				if m[1] != " " {
					mark = "&#9745;"
				}
				fmt.Fprintf(&b, "<li>%s %s</li>\n", mark, inlineHTML(m[2]))
			} else {
				fmt.Fprintf(&b, "<li>%s</li>\n", inlineHTML(item))
			}
		case numberedRe.MatchString(trimmed):
			closeTable()
			if listTag != "ol" {
				closeList()
				b.WriteString("<ol>\n")
				listTag = "ol"
			}
			fmt.Fprintf(&b, "<li>%s</li>\n", inlineHTML(numberedRe.FindStringSubmatch(trimmed)[1]))
		default:
			closeList()
			closeTable()
			fmt.Fprintf(&b, "<p>%s</p>\n", inlineHTML(trimmed))
		}
	}
	closeList()
	closeTable()
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func rtfEscape(text string) string {
	var b strings.Builder
	for _, r := range text {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == '{':
			b.WriteString(`\{`)
		case r == '}':
			b.WriteString(`\}`)
		case r > 127:
			fmt.Fprintf(&b, `\u%d?`, r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func inlineRTF(text string) string {
	out := rtfEscape(text)
	out = boldRe.ReplaceAllString(out, `{\b $1}`)
	out = italicRe.ReplaceAllString(out, `{\i $1}`)
	out = codeSpanRe.ReplaceAllString(out, `{\f1 $1}`)
	return out
}

// ToRTF renders Markdown as a Rich Text Format document that Word and
// Google Docs open natively, table structure included.
func ToRTF(markdown string) string {
	var b strings.Builder
	b.WriteString(`{\rtf1\ansi\deff0{\fonttbl{\f0 Calibri;}{\f1 Consolas;}}`)
	b.WriteString("\n")

	lines := strings.Split(markdown, "\n")
	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		switch {
		case trimmed == "":
			b.WriteString(`\par` + "\n")
		case headingRe.MatchString(trimmed):
			m := headingRe.FindStringSubmatch(trimmed)
			size := 36 - 4*len(m[1])
			if size < 22 {
				size = 22
			}
			fmt.Fprintf(&b, `{\pard\b\fs%d %s\par}`+"\n", size, inlineRTF(m[2]))
		case tableRowRe.MatchString(trimmed):
			if tableSepRe.MatchString(trimmed) {
				continue
			}
			cells := splitTableRow(trimmed)
			b.WriteString(`\trowd`)
			for j := range cells {
				fmt.Fprintf(&b, `\cellx%d`, (j+1)*2400)
			}
			b.WriteString("\n")
			for _, c := range cells {
				fmt.Fprintf(&b, `\intbl %s\cell `, inlineRTF(c))
			}
			b.WriteString(`\row` + "\n")
		case bulletRe.MatchString(trimmed):
			fmt.Fprintf(&b, `{\pard\fi-240\li480 \bullet  %s\par}`+"\n",
				inlineRTF(bulletRe.FindStringSubmatch(trimmed)[1]))
		case numberedRe.MatchString(trimmed):
			fmt.Fprintf(&b, `{\pard\li480 %s\par}`+"\n", inlineRTF(trimmed))
		default:
			fmt.Fprintf(&b, `{\pard\fs22 %s\par}`+"\n", inlineRTF(trimmed))
		}
	}
	b.WriteString("}\n")
	return b.String()
}
