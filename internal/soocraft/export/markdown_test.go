package export

import (
	"strings"
	"testing"
)

func TestToHTMLStructure(t *testing.T) {
	md := `# Statement of Objectives

The system **will** provide access.

## Objectives

- First outcome
- Second outcome

1. Numbered item

| Objective | Measure |
|-----------|---------|
| Speed     | < 2s    |
`
	html := ToHTML(md, "SOO")
	for _, want := range []string{
		"<title>SOO</title>",
		"<h1>Statement of Objectives</h1>",
		"<h2>Objectives</h2>",
		"<strong>will</strong>",
		"<ul>\n<li>First outcome</li>",
		"<ol>\n<li>Numbered item</li>",
		"<tr><th>Objective</th><th>Measure</th></tr>",
		"<tr><td>Speed</td><td>&lt; 2s</td></tr>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("missing %q", want)
		}
	}
	if strings.Contains(html, "|-----") {
		t.Error("table separator row leaked into output")
	}
}

func TestToHTMLEscapes(t *testing.T) {
	html := ToHTML("a <script> & b", "t")
	if strings.Contains(html, "<script>") {
		t.Error("unescaped markup")
	}
	if !strings.Contains(html, "a &lt;script&gt; &amp; b") {
		t.Errorf("escaping wrong: %s", html)
	}
}

func TestToHTMLChecklist(t *testing.T) {
	html := ToHTML("- [ ] open item\n- [x] done item\n", "t")
	if !strings.Contains(html, "&#9744; open item") {
		t.Error("missing unchecked box")
	}
	if !strings.Contains(html, "&#9745; done item") {
		t.Error("missing checked box")
	}
}

func TestToRTF(t *testing.T) {
	md := "# Title\n\nBody with **bold** text.\n\n| A | B |\n|---|---|\n| 1 | 2 |\n"
	rtf := ToRTF(md)
	if !strings.HasPrefix(rtf, `{\rtf1\ansi`) {
		t.Errorf("bad header: %.30q", rtf)
	}
	if !strings.HasSuffix(strings.TrimSpace(rtf), "}") {
		t.Error("unterminated document")
	}
	for _, want := range []string{`{\b bold}`, `\trowd`, `\cell`, `\row`} {
		if !strings.Contains(rtf, want) {
			t.Errorf("missing %q", want)
		}
	}
}

func TestToRTFEscapes(t *testing.T) {
	rtf := ToRTF(`braces {x} and \ backslash and café`)
	for _, want := range []string{`\{x\}`, `\\`, `\u233?`} {
		if !strings.Contains(rtf, want) {
			t.Errorf("missing %q", want)
		}
	}
}
