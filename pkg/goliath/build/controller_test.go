package build

import (
	"context"
	"strings"
	"testing"
)

// scriptedGenerator plays back canned build and patch responses.
type scriptedGenerator struct {
	builds  []string
	patches []string

	buildCalls []Request
	patchCalls []string
}

func (g *scriptedGenerator) Build(ctx context.Context, req Request) (string, error) {
	g.buildCalls = append(g.buildCalls, req)
	if len(g.builds) == 0 {
		return "", context.Canceled
	}
	out := g.builds[0]
	g.builds = g.builds[1:]
	return out, nil
}

func (g *scriptedGenerator) Patch(ctx context.Context, reason, current string) (string, error) {
	g.patchCalls = append(g.patchCalls, reason)
	if len(g.patches) == 0 {
		return "", context.Canceled
	}
	out := g.patches[0]
	g.patches = g.patches[1:]
	return out, nil
}

func TestControllerPublishesFirstValidDraft(t *testing.T) {
	gen := &scriptedGenerator{builds: []string{validPage}}
	c := NewController(gen, &Validator{MinI18nBindings: 12}, 5, nil)

	out, err := c.Run(context.Background(), Request{Title: "CSV Fixer"})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Published() || out.Attempts != 1 {
		t.Errorf("outcome = %+v", out)
	}
}

func TestControllerRepairsWithPatch(t *testing.T) {
	broken := strings.Replace(validPage, `<select id="langSel">`, `<select id="langsel">`, 1)
	fix := `--- a/index.html
+++ b/index.html
@@ -17,1 +17,1 @@
-<select id="langsel"><option value="en">English</option></select>
+<select id="langSel"><option value="en">English</option></select>
`
	gen := &scriptedGenerator{builds: []string{broken}, patches: []string{fix}}
	c := NewController(gen, &Validator{MinI18nBindings: 12}, 5, nil)

	out, err := c.Run(context.Background(), Request{Title: "CSV Fixer"})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Published() {
		t.Fatalf("outcome = %+v", out)
	}
	if out.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", out.Attempts)
	}
	if len(gen.patchCalls) != 1 || !strings.Contains(gen.patchCalls[0], "language switcher") {
		t.Errorf("patch calls = %v", gen.patchCalls)
	}
}

func TestControllerFallsBackToRegeneration(t *testing.T) {
	broken := strings.Replace(validPage, "<!-- AFF_SLOT -->", "", 1)
	gen := &scriptedGenerator{
		builds:  []string{broken, validPage},
		patches: []string{"this is not a diff"},
	}
	c := NewController(gen, &Validator{MinI18nBindings: 12}, 5, nil)

	out, err := c.Run(context.Background(), Request{Title: "CSV Fixer"})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Published() {
		t.Fatalf("outcome = %+v", out)
	}
	if len(gen.buildCalls) != 2 {
		t.Fatalf("build calls = %d, want 2", len(gen.buildCalls))
	}
	if gen.buildCalls[1].FailureReason == "" {
		t.Error("regeneration request should carry the failure reason")
	}
}

func TestControllerExhaustsAttempts(t *testing.T) {
	broken := strings.Replace(validPage, "<!-- AFF_SLOT -->", "", 1)
	gen := &scriptedGenerator{
		builds:  []string{broken, broken, broken},
		patches: []string{"junk", "junk"},
	}
	c := NewController(gen, &Validator{MinI18nBindings: 12}, 3, nil)

	out, err := c.Run(context.Background(), Request{Title: "CSV Fixer"})
	if err != nil {
		t.Fatal(err)
	}
	if out.Published() {
		t.Fatal("exhausted run reported published")
	}
	if out.State != StateFailed || out.Attempts != 3 {
		t.Errorf("outcome = %+v", out)
	}
	if !strings.Contains(out.Reason, "sponsor") {
		t.Errorf("reason = %q", out.Reason)
	}
	if out.Artifact != "" {
		t.Error("failed outcome must not carry an artifact")
	}
}
