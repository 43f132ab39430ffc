package preserve_test

import (
	"strings"
	"testing"

	"github.com/goliatone/go-compage/internal/preserve"
	"github.com/goliatone/go-compage/pkg/interfaces"
)

func preserveBody(t *testing.T, body string) preserve.Result {
	t.Helper()
	return preserve.Preserve("content/example.md", body, 0)
}

func TestPreservePlainTextIsUntouched(t *testing.T) {
	body := "# Hello, World!\n\nJust prose with *emphasis*.\n"
	res := preserveBody(t, body)

	if res.Text != body {
		t.Errorf("expected text unchanged, got %q", res.Text)
	}
	if len(res.Placeholders) != 0 || len(res.Diagnostics) != 0 {
		t.Errorf("expected nothing preserved, got %v %v", res.Placeholders, res.Diagnostics)
	}
}

func TestPreserveExpressionChain(t *testing.T) {
	res := preserveBody(t, "Hello @user.Name!\n")

	if len(res.Placeholders) != 1 {
		t.Fatalf("expected one placeholder, got %v", res.Placeholders)
	}
	ph := res.Placeholders[0]
	if ph.Kind != preserve.KindExpression {
		t.Errorf("unexpected kind %s", ph.Kind)
	}
	if ph.Text != "user.Name" {
		t.Errorf("unexpected text %q", ph.Text)
	}
	if ph.Raw != "@user.Name" {
		t.Errorf("unexpected raw %q", ph.Raw)
	}
	if want := "Hello " + ph.Token + "!\n"; res.Text != want {
		t.Errorf("expected %q, got %q", want, res.Text)
	}
	if ph.Location.Line != 1 || ph.Location.Column != 7 {
		t.Errorf("unexpected location %s", ph.Location)
	}
}

func TestPreserveExpressionForms(t *testing.T) {
	cases := []struct {
		name string
		body string
		text string
	}{
		{
			name: "parenthesized keeps outer parens",
			body: "Total: @(x + y)\n",
			text: "(x + y)",
		},
		{
			name: "call with string argument",
			body: `Count: @fmt.Sprintf("%d items (today)", count)` + "\n",
			text: `fmt.Sprintf("%d items (today)", count)`,
		},
		{
			name: "chain stops before sentence period",
			body: "See @user.Name.\n",
			text: "user.Name",
		},
		{
			name: "call followed by method chain",
			body: "@page.Path().Dir()\n",
			text: "page.Path().Dir()",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := preserveBody(t, tc.body)
			if len(res.Diagnostics) != 0 {
				t.Fatalf("unexpected diagnostics %v", res.Diagnostics)
			}
			if len(res.Placeholders) != 1 {
				t.Fatalf("expected one placeholder, got %v", res.Placeholders)
			}
			if got := res.Placeholders[0].Text; got != tc.text {
				t.Errorf("expected %q, got %q", tc.text, got)
			}
		})
	}
}

func TestPreserveLeavesPlainMarkers(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"email address", "mail user@example.com today\n"},
		{"marker before space", "twitter @ handle\n"},
		{"marker at end of input", "ping @"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := preserveBody(t, tc.body)
			if len(res.Placeholders) != 0 {
				t.Fatalf("expected nothing preserved, got %v", res.Placeholders)
			}
			if res.Text != tc.body {
				t.Errorf("expected text unchanged, got %q", res.Text)
			}
		})
	}
}

func TestPreserveEscape(t *testing.T) {
	res := preserveBody(t, "Write @@user to show a literal marker.\n")

	if len(res.Placeholders) != 1 {
		t.Fatalf("expected one placeholder, got %v", res.Placeholders)
	}
	ph := res.Placeholders[0]
	if ph.Kind != preserve.KindEscape || ph.Text != "@" || ph.Raw != "@@" {
		t.Errorf("unexpected escape placeholder %+v", ph)
	}
	if want := "Write " + ph.Token + "user to show a literal marker.\n"; res.Text != want {
		t.Errorf("expected %q, got %q", want, res.Text)
	}
}

func TestPreserveCodeBlock(t *testing.T) {
	body := "Intro.\n\n@code {\n\tvar brace = \"}\"\n\t// } in a comment\n}\n\nOutro.\n"
	res := preserveBody(t, body)

	if len(res.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics %v", res.Diagnostics)
	}
	if len(res.Placeholders) != 1 {
		t.Fatalf("expected one placeholder, got %v", res.Placeholders)
	}
	ph := res.Placeholders[0]
	if ph.Kind != preserve.KindCodeBlock {
		t.Errorf("unexpected kind %s", ph.Kind)
	}
	if want := "\n\tvar brace = \"}\"\n\t// } in a comment\n"; ph.Text != want {
		t.Errorf("unexpected body %q", ph.Text)
	}
	if strings.Contains(res.Text, "@code") {
		t.Errorf("marker leaked into text %q", res.Text)
	}
	if ph.Location.Line != 3 || ph.Location.Column != 1 {
		t.Errorf("unexpected location %s", ph.Location)
	}
}

func TestPreserveMalformedCodeBlock(t *testing.T) {
	body := "Intro.\n\n@code {\n\tfunc broken() {\n"
	res := preserveBody(t, body)

	if len(res.Diagnostics) != 1 {
		t.Fatalf("expected exactly one diagnostic, got %v", res.Diagnostics)
	}
	diag := res.Diagnostics[0]
	if diag.Code != interfaces.DiagMalformedEmbeddedSyntax {
		t.Errorf("unexpected code %s", diag.Code)
	}
	if diag.Severity != interfaces.SeverityError {
		t.Errorf("expected error severity, got %s", diag.Severity)
	}
	if diag.Location.Line != 3 || diag.Location.Column != 1 {
		t.Errorf("expected the marker position, got %s", diag.Location)
	}
	if len(res.Placeholders) != 0 {
		t.Errorf("expected no placeholders, got %v", res.Placeholders)
	}
}

func TestPreserveCodeMarkerVariants(t *testing.T) {
	t.Run("longer identifier is a plain expression", func(t *testing.T) {
		res := preserveBody(t, "@codex marks the spot\n")
		if len(res.Placeholders) != 1 {
			t.Fatalf("expected one placeholder, got %v", res.Placeholders)
		}
		ph := res.Placeholders[0]
		if ph.Kind != preserve.KindExpression || ph.Text != "codex" {
			t.Errorf("unexpected placeholder %+v", ph)
		}
	})

	t.Run("marker without brace is a plain expression", func(t *testing.T) {
		res := preserveBody(t, "read the @code carefully\n")
		if len(res.Placeholders) != 1 {
			t.Fatalf("expected one placeholder, got %v", res.Placeholders)
		}
		ph := res.Placeholders[0]
		if ph.Kind != preserve.KindExpression || ph.Text != "code" {
			t.Errorf("unexpected placeholder %+v", ph)
		}
	})
}

func TestPreserveComponentTags(t *testing.T) {
	cases := []struct {
		name string
		body string
		raw  string
	}{
		{
			name: "self closing",
			body: `Before <Alert type="info"/> after.` + "\n",
			raw:  `<Alert type="info"/>`,
		},
		{
			name: "quoted closing bracket in attribute",
			body: `<Alert label="a > b"/>` + "\n",
			raw:  `<Alert label="a > b"/>`,
		},
		{
			name: "paired with inner text",
			body: "<Card title=\"Hi\">Some *markdown* inside</Card>\n",
			raw:  "<Card title=\"Hi\">Some *markdown* inside</Card>",
		},
		{
			name: "same name nested",
			body: "<Card><Card>inner</Card></Card>\n",
			raw:  "<Card><Card>inner</Card></Card>",
		},
		{
			name: "expression attribute",
			body: "<Badge count=@stats.Total/>\n",
			raw:  "<Badge count=@stats.Total/>",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := preserveBody(t, tc.body)
			if len(res.Diagnostics) != 0 {
				t.Fatalf("unexpected diagnostics %v", res.Diagnostics)
			}
			if len(res.Placeholders) != 1 {
				t.Fatalf("expected one placeholder, got %v", res.Placeholders)
			}
			ph := res.Placeholders[0]
			if ph.Kind != preserve.KindComponentTag {
				t.Errorf("unexpected kind %s", ph.Kind)
			}
			if ph.Raw != tc.raw {
				t.Errorf("expected raw %q, got %q", tc.raw, ph.Raw)
			}
		})
	}
}

func TestPreserveLowercaseTagsAreText(t *testing.T) {
	body := "<div class=\"x\">plain html</div>\n"
	res := preserveBody(t, body)

	if len(res.Placeholders) != 0 {
		t.Fatalf("expected nothing preserved, got %v", res.Placeholders)
	}
	if res.Text != body {
		t.Errorf("expected text unchanged, got %q", res.Text)
	}
}

func TestPreserveUnclosedComponentTag(t *testing.T) {
	res := preserveBody(t, "Before <Card>never closed\n")

	diags := res.Diagnostics
	if len(diags) != 1 {
		t.Fatalf("expected one diagnostic, got %v", diags)
	}
	if diags[0].Code != interfaces.DiagMalformedEmbeddedSyntax {
		t.Errorf("unexpected code %s", diags[0].Code)
	}
	if diags[0].Location.Column != 8 {
		t.Errorf("expected the opening bracket column, got %s", diags[0].Location)
	}
}

func TestPreserveSkipsCodeSpans(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{
			name: "fenced block",
			body: "```go\n@user.Name and <Alert/>\n```\n",
		},
		{
			name: "tilde fence",
			body: "~~~\n@code { anything }\n~~~\n",
		},
		{
			name: "inline span",
			body: "Use `@user.Name` to interpolate.\n",
		},
		{
			name: "double backtick span",
			body: "Use ``@user.Name`` here.\n",
		},
		{
			name: "unterminated fence runs to end",
			body: "```\n@user.Name\n",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := preserveBody(t, tc.body)
			if len(res.Placeholders) != 0 {
				t.Fatalf("expected nothing preserved, got %v", res.Placeholders)
			}
			if res.Text != tc.body {
				t.Errorf("expected text unchanged, got %q", res.Text)
			}
		})
	}
}

func TestPreserveMixedProseAndCodeSpan(t *testing.T) {
	body := "Live @one.Value and literal `@two.Value` here.\n"
	res := preserveBody(t, body)

	if len(res.Placeholders) != 1 {
		t.Fatalf("expected one placeholder, got %v", res.Placeholders)
	}
	if res.Placeholders[0].Text != "one.Value" {
		t.Errorf("unexpected expression %q", res.Placeholders[0].Text)
	}
	if !strings.Contains(res.Text, "`@two.Value`") {
		t.Errorf("code span should stay literal, got %q", res.Text)
	}
}

func TestPreserveTokenPrefixAvoidsCollision(t *testing.T) {
	body := "The text cpg0x is author content. Live: @user.Name\n"
	res := preserveBody(t, body)

	if len(res.Placeholders) != 1 {
		t.Fatalf("expected one placeholder, got %v", res.Placeholders)
	}
	token := res.Placeholders[0].Token
	if !strings.HasPrefix(token, "cpgg") {
		t.Errorf("expected an extended prefix, got %q", token)
	}
	if strings.Count(res.Text, token) != 1 {
		t.Errorf("token should appear exactly once, got %q", res.Text)
	}
	if !strings.Contains(res.Text, "cpg0x") {
		t.Errorf("author text must survive, got %q", res.Text)
	}
}

func TestPreserveOffsetsPositionsByHeader(t *testing.T) {
	res := preserve.Preserve("content/example.md", "line one\n@user.Name\n", 5)

	if len(res.Placeholders) != 1 {
		t.Fatalf("expected one placeholder, got %v", res.Placeholders)
	}
	loc := res.Placeholders[0].Location
	if loc.Line != 7 || loc.Column != 1 {
		t.Errorf("expected file-absolute 7:1, got %s", loc)
	}
}

func TestPreserveDeterministicTokens(t *testing.T) {
	body := "@a.B then <Tag/> then @code { x := 1 }\n"
	first := preserveBody(t, body)
	second := preserveBody(t, body)

	if first.Text != second.Text {
		t.Errorf("text differs between runs")
	}
	if len(first.Placeholders) != len(second.Placeholders) {
		t.Fatalf("placeholder counts differ")
	}
	for i := range first.Placeholders {
		if first.Placeholders[i].Token != second.Placeholders[i].Token {
			t.Errorf("token %d differs: %q vs %q", i, first.Placeholders[i].Token, second.Placeholders[i].Token)
		}
	}
}
