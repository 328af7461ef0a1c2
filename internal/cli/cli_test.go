package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	fio "github.com/matzehuels/facetlayout/pkg/io"
)

const valveDoc = `{
  "diagram": {"id": 3, "name": "Valve", "type": "block",
              "bounds": {"left": 0, "top": 0, "width": 400, "height": 300}},
  "classifiers": [
    {"placement_id": 1, "id": 1, "name": "Actuator",
     "symbol": {"left": 20, "top": 20, "width": 100, "height": 40}},
    {"placement_id": 2, "id": 2, "name": "Valve",
     "symbol": {"left": 240, "top": 200, "width": 100, "height": 40}}
  ],
  "relationships": [
    {"id": 5, "type": "dependency", "from_classifier_id": 1, "to_classifier_id": 2}
  ]
}`

// runCLI runs the root command with args against an isolated config and cache.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeDoc(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "valve.json")
	if err := os.WriteFile(path, []byte(valveDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{"svg"}},
		{"svg", []string{"svg"}},
		{"svg,pdf,png", []string{"svg", "pdf", "png"}},
		{"svg, png,", []string{"svg", "png"}},
	}
	for _, tt := range tests {
		got := parseFormats(tt.input)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLayoutCommand(t *testing.T) {
	input := writeDoc(t)
	output := filepath.Join(filepath.Dir(input), "out.layout.json")

	if _, err := runCLI(t, "layout", input, "-o", output, "--variant", "standard"); err != nil {
		t.Fatalf("layout: %v", err)
	}

	f, err := os.Open(output)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	l, err := fio.ReadLayout(f)
	if err != nil {
		t.Fatalf("ReadLayout: %v", err)
	}
	if l.DiagramID != 3 || len(l.Relationships) != 1 {
		t.Errorf("layout = %+v", l)
	}
}

func TestLayoutCommandDefaultOutput(t *testing.T) {
	input := writeDoc(t)
	if _, err := runCLI(t, "layout", input, "--no-cache"); err != nil {
		t.Fatalf("layout: %v", err)
	}
	if _, err := os.Stat(strings.TrimSuffix(input, ".json") + ".layout.json"); err != nil {
		t.Errorf("default output missing: %v", err)
	}
}

func TestLayoutCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"layout", filepath.Join(t.TempDir(), "none.json")}},
		{"bad variant", []string{"layout", writeDoc(t), "--variant", "grid"}},
		{"bad distance", []string{"layout", writeDoc(t), "--object-distance=-3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCLI(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRenderCommand(t *testing.T) {
	input := writeDoc(t)
	output := filepath.Join(filepath.Dir(input), "preview.svg")

	if _, err := runCLI(t, "render", input, "-o", output, "--show-implicit"); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Error("output is not svg")
	}
}

func TestRenderCommandInvalidFormat(t *testing.T) {
	if _, err := runCLI(t, "render", writeDoc(t), "-f", "gif"); err == nil {
		t.Error("expected error for gif")
	}
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facetlayout.yaml")

	if _, err := runCLI(t, "--config", path, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := runCLI(t, "--config", path, "config", "init"); err == nil {
		t.Error("second init without --force should fail")
	}

	out, err := runCLI(t, "--config", path, "config", "show", "--format", "yaml")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "object_distance:") {
		t.Errorf("config show output:\n%s", out)
	}
}

func TestCachePathCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(t.TempDir(), "c.toml")
	if err := os.WriteFile(cfg, []byte("[cache]\ndir = \""+filepath.ToSlash(dir)+"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "--config", cfg, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != dir {
		t.Errorf("cache path = %q, want %q", strings.TrimSpace(out), dir)
	}
}

func TestWatchFile(t *testing.T) {
	path := writeDoc(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, path, 10*time.Millisecond, func() { calls <- struct{}{} })
	}()

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte(valveDoc+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-calls:
	case <-time.After(3 * time.Second):
		t.Fatal("change not reported")
	}

	cancel()
	if err := <-done; err != context.Canceled {
		t.Errorf("watchFile = %v, want context.Canceled", err)
	}
}

func TestWatcherUpdate(t *testing.T) {
	input := writeDoc(t)
	output := filepath.Join(filepath.Dir(input), "valve.layout.json")
	w := &watcher{input: input, output: output}
	ctx := withLogger(context.Background(), log.New(io.Discard))

	if err := w.update(ctx); err != nil {
		t.Fatalf("first update: %v", err)
	}
	first := w.model

	// move a box: same structure, model is reused
	moved := strings.Replace(valveDoc, `"left": 240`, `"left": 260`, 1)
	if err := os.WriteFile(input, []byte(moved), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := w.update(ctx); err != nil {
		t.Fatalf("second update: %v", err)
	}
	if w.model != first {
		t.Error("structurally equal document should reuse the model")
	}
	if got := w.model.Classifiers[1].Symbol.Left; got != 260 {
		t.Errorf("moved box left = %v, want 260", got)
	}

	// add a relationship: model is rebuilt
	var doc map[string]any
	if err := json.Unmarshal([]byte(moved), &doc); err != nil {
		t.Fatal(err)
	}
	rels := doc["relationships"].([]any)
	doc["relationships"] = append(rels, map[string]any{
		"id": 6, "type": "association", "from_classifier_id": 2, "to_classifier_id": 1,
	})
	data, _ := json.Marshal(doc)
	if err := os.WriteFile(input, data, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := w.update(ctx); err != nil {
		t.Fatalf("third update: %v", err)
	}
	if w.model == first {
		t.Error("structural change should rebuild the model")
	}
	if len(w.model.Relationships) != 2 {
		t.Errorf("relationships = %d, want 2", len(w.model.Relationships))
	}
}
