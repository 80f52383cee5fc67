package cache

// Keyer derives cache keys. Implementations must be deterministic.
type Keyer interface {
	// LayoutKey returns the key for a layout computed from a document.
	LayoutKey(programHash string, opts LayoutKeyOpts) string
	// ArtifactKey returns the key for a layout rendered to one format.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds the inputs besides the document that change a layout.
type LayoutKeyOpts struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ArtifactKeyOpts holds the inputs besides the layout that change a
// rendered artifact.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Slots  bool    `json:"slots,omitempty"`
	Grid   bool    `json:"grid,omitempty"`
	Labels bool    `json:"labels,omitempty"`
	Scale  float64 `json:"scale,omitempty"`
}

// DefaultKeyer hashes its inputs into "<kind>:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(programHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", programHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
