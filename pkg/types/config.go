package types

// HTTPConfig holds the HTTP settings shared by every source request. The
// response timeout is fixed and not part of the configuration.
type HTTPConfig struct {
	// UserAgent is the identifying header sent with every request. Empty
	// means the built-in value.
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries is the number of extra attempts on HTTP 429/503 (default 0).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// KeylessPolicy selects how records with no DOI, arXiv ID, or title are
// deduplicated.
type KeylessPolicy string

const (
	// KeylessKeep retains every keyless record.
	KeylessKeep KeylessPolicy = "keep"

	// KeylessCollide merges all keyless records into the first one seen.
	KeylessCollide KeylessPolicy = "collide"
)

// Valid reports whether p is a known policy.
func (p KeylessPolicy) Valid() bool {
	return p == KeylessKeep || p == KeylessCollide
}

// Config groups every setting for one aggregation run.
type Config struct {
	HTTPConfig `yaml:",inline"`

	// MaxItems is the requested per-source cap (default 100, clamped to 1..200).
	MaxItems int `json:"max_items" yaml:"max_items"`

	// OutDir is the directory receiving the CSV, HTML, and log files.
	OutDir string `json:"out_dir" yaml:"out_dir"`

	// WithDOAJ enables the DOAJ source.
	WithDOAJ bool `json:"with_doaj" yaml:"with_doaj"`

	// SaveSnapshots writes raw source payloads next to the run log.
	SaveSnapshots bool `json:"save_snapshots" yaml:"save_snapshots"`

	// SnapshotLimit caps each snapshot in bytes; 0 means unlimited.
	SnapshotLimit int `json:"snapshot_limit" yaml:"snapshot_limit"`

	// Mailto is the polite-contact address sent to Crossref.
	Mailto string `json:"mailto,omitempty" yaml:"mailto,omitempty"`

	// CSL additionally writes a CSL-YAML bibliography.
	CSL bool `json:"csl" yaml:"csl"`

	// Keyless selects the dedup policy for records without an identity key.
	Keyless KeylessPolicy `json:"keyless" yaml:"keyless"`
}

// DefaultConfig returns the settings used when neither flags, environment
// nor a config file say otherwise.
func DefaultConfig() Config {
	return Config{
		MaxItems:      100,
		OutDir:        "results",
		SaveSnapshots: true,
		SnapshotLimit: 20000,
		Keyless:       KeylessKeep,
	}
}
