package cache

// Keyer derives cache keys. Keys must change whenever anything that affects
// the cached value changes.
type Keyer interface {
	// LayoutKey identifies the renderer feed computed from a save.
	LayoutKey(saveHash string, opts LayoutKeyOpts) string
	// ArtifactKey identifies a rendered output of a feed.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds the settings that shape a layout.
type LayoutKeyOpts struct {
	RootRing    float64 `json:"root_ring"`
	ChildRadius float64 `json:"child_radius"`
	Shrink      float64 `json:"shrink"`
	MinRadius   float64 `json:"min_radius"`
	SeedStep    int     `json:"seed_step"`
	PaletteHash string  `json:"palette_hash,omitempty"`
}

// ArtifactKeyOpts holds the settings that shape a rendered artifact.
type ArtifactKeyOpts struct {
	Format     string `json:"format"`
	Background string `json:"background,omitempty"`
	HideLabels bool   `json:"hide_labels,omitempty"`
}

// DefaultKeyer hashes key options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key scheme.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns "layout:<sha256>" over the save hash and options.
func (DefaultKeyer) LayoutKey(saveHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", saveHash, opts)
}

// ArtifactKey returns "artifact:<format>:<sha256>" over the feed hash and
// options.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact:"+opts.Format, layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
