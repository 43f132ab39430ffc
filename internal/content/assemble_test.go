package content_test

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/goliatone/go-compage/internal/content"
	"github.com/goliatone/go-compage/internal/preserve"
	"github.com/goliatone/go-compage/pkg/interfaces"
)

// preserveAndAssemble runs the preserve/reconstruct pair without a Markdown
// renderer in between, which is the identity for placeholder tokens.
func preserveAndAssemble(t *testing.T, body string) (*content.Model, []interfaces.Diagnostic) {
	t.Helper()
	pres := preserve.Preserve("content/example.md", body, 0)
	if len(pres.Diagnostics) != 0 {
		t.Fatalf("unexpected preserve diagnostics %v", pres.Diagnostics)
	}
	return content.Assemble("content/example.md", pres.Text, pres.Placeholders)
}

func TestAssembleStaticRoundTrip(t *testing.T) {
	html := "<h1>Hello, World!</h1>\n<p>Prose only.</p>\n"
	model, diags := content.Assemble("content/example.md", html, nil)

	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics %v", diags)
	}
	if len(model.Segments) != 1 {
		t.Fatalf("expected one segment, got %v", model.Segments)
	}
	seg := model.Segments[0]
	if seg.Kind != content.SegmentStatic || seg.Sequence != 0 {
		t.Errorf("unexpected segment %+v", seg)
	}
	if seg.Text != html {
		t.Errorf("static content must round-trip, got %q", seg.Text)
	}
}

func TestAssembleSplitsAroundExpression(t *testing.T) {
	body := "Hello @user.Name, welcome back.\n"
	model, diags := preserveAndAssemble(t, body)

	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics %v", diags)
	}
	if len(model.Segments) != 3 {
		t.Fatalf("expected three segments, got %v", model.Segments)
	}
	if s := model.Segments[0]; s.Kind != content.SegmentStatic || s.Sequence != 0 || s.Text != "Hello " {
		t.Errorf("unexpected first segment %+v", s)
	}
	if s := model.Segments[1]; s.Kind != content.SegmentExpression || s.Sequence != 1 || s.Text != "user.Name" {
		t.Errorf("unexpected second segment %+v", s)
	}
	if s := model.Segments[2]; s.Kind != content.SegmentStatic || s.Sequence != 2 || s.Text != ", welcome back.\n" {
		t.Errorf("unexpected third segment %+v", s)
	}
}

func TestAssembleEscapeRejoinsStatic(t *testing.T) {
	model, diags := preserveAndAssemble(t, "Write @@user to mention someone.\n")

	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics %v", diags)
	}
	if len(model.Segments) != 1 {
		t.Fatalf("expected one coalesced segment, got %v", model.Segments)
	}
	if got := model.Segments[0].Text; got != "Write @user to mention someone.\n" {
		t.Errorf("unexpected static text %q", got)
	}
}

func TestAssembleHoistsCodeBlockAndUnwrapsParagraph(t *testing.T) {
	pres := preserve.Preserve("content/example.md", "@code {\nfunc Helper() {}\n}", 0)
	if len(pres.Placeholders) != 1 {
		t.Fatalf("expected one placeholder, got %v", pres.Placeholders)
	}
	token := pres.Placeholders[0].Token
	html := "<p>before</p>\n<p>" + token + "</p>\n<p>after</p>\n"

	model, diags := content.Assemble("content/example.md", html, pres.Placeholders)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics %v", diags)
	}
	if len(model.Segments) != 3 {
		t.Fatalf("expected three segments, got %v", model.Segments)
	}
	if s := model.Segments[0]; s.Text != "<p>before</p>\n" {
		t.Errorf("wrapper paragraph must be unwrapped, got %q", s.Text)
	}
	if s := model.Segments[1]; s.Kind != content.SegmentCodeBlock || s.CodeIndex != 0 {
		t.Errorf("unexpected code segment %+v", s)
	}
	if s := model.Segments[2]; s.Text != "<p>after</p>\n" {
		t.Errorf("unexpected trailing static %q", s.Text)
	}
	if len(model.CodeBlocks) != 1 || model.CodeBlocks[0].RawCode != "\nfunc Helper() {}\n" {
		t.Errorf("unexpected code blocks %v", model.CodeBlocks)
	}
}

func TestAssembleComponentAttributes(t *testing.T) {
	body := `<Panel title="Stats" count=@stats.Total visible compact="@mode.Compact"/>` + "\n"
	model, diags := preserveAndAssemble(t, body)

	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics %v", diags)
	}
	if len(model.References) != 1 {
		t.Fatalf("expected one reference, got %v", model.References)
	}
	ref := model.References[0]
	if ref.TypeName != "Panel" {
		t.Errorf("unexpected type name %q", ref.TypeName)
	}
	if ref.ChildContent != nil {
		t.Errorf("self-closing tag must have nil child content")
	}
	want := []content.ReferenceParameter{
		{Name: "title", Value: "Stats"},
		{Name: "count", Value: "stats.Total", IsExpression: true},
		{Name: "visible", Value: "true", IsExpression: true},
		{Name: "compact", Value: "mode.Compact", IsExpression: true},
	}
	if len(ref.Parameters) != len(want) {
		t.Fatalf("expected %d parameters, got %v", len(want), ref.Parameters)
	}
	for i, param := range want {
		if ref.Parameters[i] != param {
			t.Errorf("parameter %d = %+v, want %+v", i, ref.Parameters[i], param)
		}
	}
}

func TestAssembleChildContentRestartsSequence(t *testing.T) {
	body := "Intro.\n<Card title=\"Outer\">\nInner @child.Value text\n</Card>\n"
	model, diags := preserveAndAssemble(t, body)

	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics %v", diags)
	}
	if len(model.References) != 1 {
		t.Fatalf("expected one reference, got %v", model.References)
	}
	child := model.References[0].ChildContent
	if child == nil {
		t.Fatal("expected child content")
	}
	if len(child.Segments) != 3 {
		t.Fatalf("expected three child segments, got %v", child.Segments)
	}
	if child.Segments[0].Sequence != 0 {
		t.Errorf("child sequence must restart at zero, got %d", child.Segments[0].Sequence)
	}
	if s := child.Segments[1]; s.Kind != content.SegmentExpression || s.Text != "child.Value" {
		t.Errorf("unexpected child expression %+v", s)
	}
}

func TestAssembleChildCodeBlocksBubbleToRoot(t *testing.T) {
	body := "<Card>\n@code { func Inner() {} }\n</Card>\n\n@code { func Outer() {} }\n"
	model, diags := preserveAndAssemble(t, body)

	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics %v", diags)
	}
	if len(model.CodeBlocks) != 2 {
		t.Fatalf("expected two code blocks on the root, got %v", model.CodeBlocks)
	}
	if !strings.Contains(model.CodeBlocks[0].RawCode, "Inner") {
		t.Errorf("expected the nested block first, got %q", model.CodeBlocks[0].RawCode)
	}
	if !strings.Contains(model.CodeBlocks[1].RawCode, "Outer") {
		t.Errorf("expected the top-level block second, got %q", model.CodeBlocks[1].RawCode)
	}

	child := model.References[0].ChildContent
	if child == nil {
		t.Fatal("expected child content")
	}
	var childCode *content.Segment
	for i := range child.Segments {
		if child.Segments[i].Kind == content.SegmentCodeBlock {
			childCode = &child.Segments[i]
		}
	}
	if childCode == nil || childCode.CodeIndex != 0 {
		t.Errorf("child code segment should index the shared list, got %+v", childCode)
	}
}

func TestAssembleLostTokenBecomesTrailingStatic(t *testing.T) {
	pres := preserve.Preserve("content/example.md", "Keep @user.Name safe", 0)
	html := "<p>mangled output</p>\n"

	model, diags := content.Assemble("content/example.md", html, pres.Placeholders)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics %v", diags)
	}
	if len(model.Segments) != 1 {
		t.Fatalf("expected one segment, got %v", model.Segments)
	}
	if got := model.Segments[0].Text; got != html+"@user.Name" {
		t.Errorf("lost token must trail as raw text, got %q", got)
	}
}

func TestAssembleNestingDepthBounded(t *testing.T) {
	body := strings.Repeat("<Card>", 20) + "core" + strings.Repeat("</Card>", 20)
	model, diags := preserveAndAssemble(t, body)

	if len(diags) != 1 {
		t.Fatalf("expected one diagnostic, got %v", diags)
	}
	if diags[0].Code != interfaces.DiagMalformedEmbeddedSyntax {
		t.Errorf("unexpected code %s", diags[0].Code)
	}
	if !strings.Contains(diags[0].Message, "nesting") {
		t.Errorf("unexpected message %q", diags[0].Message)
	}
	if len(model.References) != 1 {
		t.Errorf("outermost reference must still parse, got %v", model.References)
	}
}

func TestAssembleForEachReferenceVisitsNested(t *testing.T) {
	body := "<Outer>\n<Inner level=\"1\"/>\n</Outer>\n<After/>\n"
	model, diags := preserveAndAssemble(t, body)

	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics %v", diags)
	}
	var names []string
	model.ForEachReference(func(ref *content.ComponentReference) {
		names = append(names, ref.TypeName)
	})
	want := []string{"Outer", "Inner", "After"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("visit order %v, want %v", names, want)
		}
	}
}

// randomBody builds a random mix of prose, expressions and nested tags.
// The shape only needs to be valid, not meaningful.
func randomBody(rng *rand.Rand, depth int) string {
	var b strings.Builder
	n := 1 + rng.Intn(4)
	for i := 0; i < n; i++ {
		switch rng.Intn(3) {
		case 0:
			fmt.Fprintf(&b, "prose%d ", rng.Intn(100))
		case 1:
			fmt.Fprintf(&b, "@item%d.Value ", rng.Intn(9))
		default:
			if depth >= 3 {
				b.WriteString("leaf ")
				continue
			}
			name := fmt.Sprintf("Part%d", rng.Intn(5))
			fmt.Fprintf(&b, "<%s>%s</%s> ", name, randomBody(rng, depth+1), name)
		}
	}
	return b.String()
}

func verifyScope(t *testing.T, m *content.Model) {
	t.Helper()
	for i, seg := range m.Segments {
		if seg.Sequence != i {
			t.Fatalf("segment %d carries sequence %d: %+v", i, seg.Sequence, m.Segments)
		}
		if seg.Kind == content.SegmentComponent && seg.Ref != nil && seg.Ref.ChildContent != nil {
			verifyScope(t, seg.Ref.ChildContent)
		}
	}
}

func TestSequencesAcrossRandomTrees(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 100; round++ {
		body := randomBody(rng, 0)
		pres := preserve.Preserve("content/random.md", body, 0)
		if len(pres.Diagnostics) != 0 {
			t.Fatalf("round %d: preserve diagnostics %v for body %q", round, pres.Diagnostics, body)
		}
		model, diags := content.Assemble("content/random.md", pres.Text, pres.Placeholders)
		if len(diags) != 0 {
			t.Fatalf("round %d: diagnostics %v for body %q", round, diags, body)
		}
		verifyScope(t, model)
	}
}
