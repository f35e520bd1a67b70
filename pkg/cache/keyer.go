package cache

// ArtifactKeyOpts are the render settings that change an artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	RankDir  string `json:"rankdir,omitempty"`
	Detailed bool   `json:"detailed,omitempty"`
}

// SceneKeyOpts are the inputs besides the problem that change a scene.
// DefaultAgent picks the drawn agent and owns legacy facts and actions.
type SceneKeyOpts struct {
	PlanHash     string   `json:"plan,omitempty"`
	DefaultAgent string   `json:"default_agent,omitempty"`
	Agents       []string `json:"agents,omitempty"`
	Palette      []string `json:"palette,omitempty"`
}

// Keyer derives cache keys from content hashes and options.
type Keyer interface {
	// ArtifactKey keys a drawing of the problem with the given hash.
	ArtifactKey(problemHash string, opts ArtifactKeyOpts) string
	// SceneKey keys a scene payload of the problem with the given hash.
	SceneKey(problemHash string, opts SceneKeyOpts) string
}

// DefaultKeyer hashes the hash and options together under a fixed prefix.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(problemHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", problemHash, opts)
}

// SceneKey implements Keyer.
func (DefaultKeyer) SceneKey(problemHash string, opts SceneKeyOpts) string {
	return hashKey("scene", problemHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix, giving the CLI and the server
// separate namespaces in a shared backend.
//
//	serverKeyer := NewScopedKeyer(NewDefaultKeyer(), "api:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(problemHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(problemHash, opts)
}

// SceneKey generates a prefixed scene key.
func (k *ScopedKeyer) SceneKey(problemHash string, opts SceneKeyOpts) string {
	return k.prefix + k.inner.SceneKey(problemHash, opts)
}
