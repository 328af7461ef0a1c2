package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	apperrors "github.com/matzehuels/facetlayout/pkg/errors"
	"github.com/matzehuels/facetlayout/pkg/geometry"
	fio "github.com/matzehuels/facetlayout/pkg/io"
	"github.com/matzehuels/facetlayout/pkg/layout"
	"github.com/matzehuels/facetlayout/pkg/pencil"
	"github.com/matzehuels/facetlayout/pkg/render"
	"github.com/matzehuels/facetlayout/pkg/visible"
)

const tankDoc = `{
  "diagram": {"id": 1, "name": "Tank", "type": "block",
              "bounds": {"left": 0, "top": 0, "width": 600, "height": 400}},
  "classifiers": [
    {"placement_id": 1, "id": 10, "name": "Tank",
     "symbol": {"left": 40, "top": 40, "width": 120, "height": 60}},
    {"placement_id": 2, "id": 11, "name": "Sensor",
     "symbol": {"left": 360, "top": 260, "width": 120, "height": 60}}
  ],
  "relationships": [
    {"id": 100, "type": "dependency", "from_classifier_id": 10, "to_classifier_id": 11}
  ]
}`

// memCache is an in-memory cache that counts hits.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
	sets int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	if ok {
		c.hits++
	}
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func TestValidateVariant(t *testing.T) {
	tests := []struct {
		variant string
		wantErr bool
	}{
		{"", false},
		{"standard", false},
		{"void", false},
		{"communication", false},
		{"1d", false},
		{"Standard", true}, // case-sensitive
		{"grid", true},
	}

	for _, tt := range tests {
		err := ValidateVariant(tt.variant)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateVariant(%q) error = %v, wantErr %v", tt.variant, err, tt.wantErr)
		}
	}
}

func TestValidateRenderer(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"svg", false},
		{"dot", false},
		{"", true},
		{"canvas", true},
	}

	for _, tt := range tests {
		err := ValidateRenderer(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateRenderer(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}

	if opts.Sizes != pencil.DefaultSizes() {
		t.Errorf("Sizes = %+v, want defaults", opts.Sizes)
	}
	if opts.Renderer != DefaultRenderer {
		t.Errorf("Renderer = %q, want %q", opts.Renderer, DefaultRenderer)
	}
	if opts.Render.FontSize != opts.Sizes.FontSize {
		t.Errorf("Render.FontSize = %v, want %v", opts.Render.FontSize, opts.Sizes.FontSize)
	}
	if opts.Render.Padding != render.DefaultOptions().Padding {
		t.Errorf("Render.Padding = %v", opts.Render.Padding)
	}
	if opts.Logger == nil {
		t.Error("Logger should be set")
	}
	if len(opts.Formats) != 0 {
		t.Errorf("Formats = %v, want none", opts.Formats)
	}
}

func TestOptionsIdempotent(t *testing.T) {
	opts := Options{Formats: []string{"svg"}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	first := opts.ArtifactKeyOpts("svg")

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if got := opts.ArtifactKeyOpts("svg"); got != first {
		t.Errorf("second call changed options: %+v vs %+v", got, first)
	}
}

func TestOptionsInvalid(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"variant", Options{Variant: "grid"}},
		{"renderer", Options{Renderer: "canvas"}},
		{"format", Options{Formats: []string{"gif"}}},
		{"sizes", Options{Sizes: pencil.Sizes{ObjectDistance: -1, LineWidth: 1, FontSize: 12}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestKeyOpts(t *testing.T) {
	a := Options{Variant: VariantStandard}
	b := Options{Variant: VariantStandard, Sizes: pencil.Sizes{ObjectDistance: 20, LineWidth: 1, FontSize: 12}}
	for _, o := range []*Options{&a, &b} {
		if err := o.ValidateAndSetDefaults(); err != nil {
			t.Fatal(err)
		}
	}
	if a.LayoutKeyOpts() == b.LayoutKeyOpts() {
		t.Error("different object distances should give different layout keys")
	}
	if a.ArtifactKeyOpts("svg") == a.ArtifactKeyOpts("png") {
		t.Error("formats should give different artifact keys")
	}
}

func TestLayoutVariants(t *testing.T) {
	for _, variant := range []string{VariantAuto, VariantStandard, VariantVoid, VariantCommunication, Variant1D} {
		t.Run("variant="+variant, func(t *testing.T) {
			doc, err := fio.ReadDocument(strings.NewReader(tankDoc))
			if err != nil {
				t.Fatal(err)
			}
			m, err := doc.Build()
			if err != nil {
				t.Fatal(err)
			}
			stats, err := Layout(context.Background(), m, Options{Variant: variant}, nil)
			if err != nil {
				t.Fatalf("Layout: %v", err)
			}
			if stats.Relationships != 1 {
				t.Errorf("relationships = %d, want 1", stats.Relationships)
			}
		})
	}
}

func TestLayoutCancelled(t *testing.T) {
	doc, _ := fio.ReadDocument(strings.NewReader(tankDoc))
	m, _ := doc.Build()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Layout(ctx, m, Options{}, nil); err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestExecute(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	result, err := runner.Execute(context.Background(), []byte(tankDoc), Options{Formats: []string{"svg"}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.RunID == "" || result.InputHash == "" || result.LayoutHash == "" {
		t.Errorf("missing identifiers: %+v", result)
	}
	if result.Stats.Classifiers != 2 || result.Stats.Relationships != 1 {
		t.Errorf("stats = %+v", result.Stats)
	}
	if result.Layout == nil || len(result.Layout.Relationships) != 1 {
		t.Fatalf("layout = %+v", result.Layout)
	}
	if !bytes.Contains(result.Artifacts["svg"], []byte("<svg")) {
		t.Error("svg artifact missing")
	}
	if result.Warning != nil {
		t.Errorf("unexpected warning: %v", result.Warning)
	}
}

func TestExecuteLayoutOnly(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	result, err := runner.Execute(context.Background(), []byte(tankDoc), Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result.Artifacts) != 0 {
		t.Errorf("artifacts = %d, want none", len(result.Artifacts))
	}
	if result.Layout == nil {
		t.Error("layout should be set")
	}
}

func TestExecuteCapacityExceeded(t *testing.T) {
	// Classifier 11 is placed twice, so relationship 1 fans out to two
	// layouts and the last relationship no longer fits.
	doc := fio.Document{
		Diagram: fio.DiagramDoc{ID: 1, Name: "Crowded", Type: visible.DiagramBlock,
			Bounds: geometry.NewRect(0, 0, 1000, 800)},
		Classifiers: []fio.ClassifierDoc{
			{PlacementID: 1, ID: 10, Name: "Hub", Symbol: geometry.NewRect(400, 40, 160, 80)},
			{PlacementID: 2, ID: 11, Name: "Left", Symbol: geometry.NewRect(40, 600, 160, 80)},
			{PlacementID: 3, ID: 11, Name: "Left", Symbol: geometry.NewRect(760, 600, 160, 80)},
			{PlacementID: 4, ID: 12, Name: "Sink", Symbol: geometry.NewRect(400, 600, 160, 80)},
		},
	}
	doc.Relationships = append(doc.Relationships,
		visible.Relationship{ID: 1, FromClassifierID: 10, ToClassifierID: 11})
	for id := int64(2); id <= layout.MaxRelationships; id++ {
		doc.Relationships = append(doc.Relationships,
			visible.Relationship{ID: id, FromClassifierID: 10, ToClassifierID: 12})
	}
	input, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}

	runner := NewRunner(nil, nil, nil)
	result, err := runner.Execute(context.Background(), input, Options{Variant: VariantStandard})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !apperrors.IsCapacityExceeded(result.Warning) {
		t.Errorf("Warning = %v, want capacity exceeded", result.Warning)
	}
	if result.Stats.Dropped != 1 {
		t.Errorf("Stats.Dropped = %d, want 1", result.Stats.Dropped)
	}

	m := result.Model
	if len(m.Relationships) != layout.MaxRelationships {
		t.Fatalf("relationship layouts = %d, want %d", len(m.Relationships), layout.MaxRelationships)
	}
	for i, r := range m.Relationships {
		if !r.Shaped || r.Shape.Length() <= 0 {
			t.Fatalf("layout %d: shaped=%v length=%v", i, r.Shaped, r.Shape.Length())
		}
	}
	if first := m.Relationships[0]; first.From.Classifier != 0 || first.To.Classifier != 1 {
		t.Errorf("first layout = %+v, want placement 0 to 1", first)
	}
}

func TestExecuteCaching(t *testing.T) {
	c := newMemCache()
	runner := NewRunner(c, nil, nil)
	opts := Options{Formats: []string{"svg"}}

	first, err := runner.Execute(context.Background(), []byte(tankDoc), opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run hit the cache: %+v", first.CacheInfo)
	}
	if c.sets != 2 {
		t.Errorf("sets = %d, want 2 (layout and svg)", c.sets)
	}

	second, err := runner.Execute(context.Background(), []byte(tankDoc), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run missed the cache: %+v", second.CacheInfo)
	}
	if first.LayoutHash != second.LayoutHash {
		t.Error("cached layout should hash the same")
	}
	if !bytes.Equal(first.Artifacts["svg"], second.Artifacts["svg"]) {
		t.Error("cached artifact differs")
	}
	if first.RunID == second.RunID {
		t.Error("run IDs should differ")
	}
}

func TestExecuteRefresh(t *testing.T) {
	c := newMemCache()
	runner := NewRunner(c, nil, nil)

	if _, err := runner.Execute(context.Background(), []byte(tankDoc), Options{}); err != nil {
		t.Fatal(err)
	}
	result, err := runner.Execute(context.Background(), []byte(tankDoc), Options{Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if result.CacheInfo.LayoutHit {
		t.Error("refresh should skip the cache")
	}
	if c.hits != 0 {
		t.Errorf("hits = %d, want 0", c.hits)
	}
}

func TestExecuteInvalid(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	tests := []struct {
		name  string
		input string
		opts  Options
	}{
		{"malformed document", `{"diagram":`, Options{}},
		{"bad variant", tankDoc, Options{Variant: "grid"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runner.Execute(context.Background(), []byte(tt.input), tt.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}
