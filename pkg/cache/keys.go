package cache

// LayoutKeyOpts are the options that change a layout result.
type LayoutKeyOpts struct {
	Variant        string  `msgpack:"variant"`
	ObjectDistance float64 `msgpack:"object_distance"`
	LineWidth      float64 `msgpack:"line_width"`
}

// ArtifactKeyOpts are the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format       string  `msgpack:"format"`
	Renderer     string  `msgpack:"renderer"`
	FontSize     float64 `msgpack:"font_size"`
	LineWidth    float64 `msgpack:"line_width"`
	Padding      float64 `msgpack:"padding"`
	ShowImplicit bool    `msgpack:"show_implicit"`
	Scale        float64 `msgpack:"scale"`
}

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey keys the layout of a diagram document by its content hash.
	LayoutKey(inputHash string, opts LayoutKeyOpts) string
	// ArtifactKey keys a rendered artifact by the hash of its layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces "layout:<sha256>" and "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key scheme.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", inputHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
