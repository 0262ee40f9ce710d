package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
)

// VerticalKind selects the pipeline variant for a vertical.
type VerticalKind string

const (
	// KindGeneral is the default document pipeline.
	KindGeneral VerticalKind = "general"

	// KindStructured is the JSON/structured-data pipeline. It switches the
	// indexer to JSON parsing mode, forces zero chunk overlap and suffixes
	// all derived resource names with "-json".
	KindStructured VerticalKind = "structured"
)

// ParseVerticalKind validates and converts a kind string.
func ParseVerticalKind(s string) (VerticalKind, error) {
	switch VerticalKind(s) {
	case KindGeneral, KindStructured:
		return VerticalKind(s), nil
	case "":
		return KindGeneral, nil
	default:
		return "", fmt.Errorf("%w: unknown vertical kind %q", ErrInvalidInput, s)
	}
}

// ResourceType identifies one of the four pipeline resources.
type ResourceType string

const (
	ResourceDataSource ResourceType = "datasource"
	ResourceSkillset   ResourceType = "skillset"
	ResourceIndex      ResourceType = "index"
	ResourceIndexer    ResourceType = "indexer"
)

// CreationOrder is the strict dependency order for creating pipeline
// resources. The indexer references the other three by name, so it is
// always last. Teardown runs in exact reverse.
var CreationOrder = []ResourceType{
	ResourceDataSource,
	ResourceSkillset,
	ResourceIndex,
	ResourceIndexer,
}

// TeardownOrder is CreationOrder reversed.
var TeardownOrder = []ResourceType{
	ResourceIndexer,
	ResourceIndex,
	ResourceSkillset,
	ResourceDataSource,
}

// prefixPattern restricts prefixes to the character set accepted by the
// downstream search service's resource names.
var prefixPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,23}$`)

// ValidatePrefix checks a vertical prefix.
func ValidatePrefix(prefix string) error {
	if !prefixPattern.MatchString(prefix) {
		return fmt.Errorf("%w: prefix %q must be 1-24 lowercase alphanumeric characters or hyphens", ErrInvalidInput, prefix)
	}
	return nil
}

// VerticalConfig is the closed configuration for one vertical. Unknown
// keys are rejected at load time by the settings layer.
type VerticalConfig struct {
	// Prefix derives all four resource names.
	Prefix string `toml:"prefix"`

	// Kind selects the pipeline variant.
	Kind VerticalKind `toml:"kind"`

	// Container is the durable-storage container the data source reads.
	Container string `toml:"container"`

	// ChunkSize is the target chunk size in characters.
	ChunkSize int `toml:"chunk_size"`

	// Overlap is the chunk overlap in characters. Always zero for the
	// structured kind.
	Overlap int `toml:"overlap"`

	// IndexedExtensions is the extension allow-list for the indexer.
	IndexedExtensions []string `toml:"indexed_extensions"`

	// ExcludedExtensions is the extension deny-list for the indexer.
	ExcludedExtensions []string `toml:"excluded_extensions"`
}

// Validate checks the configuration for internal consistency.
func (c *VerticalConfig) Validate() error {
	if err := ValidatePrefix(c.Prefix); err != nil {
		return err
	}
	if _, err := ParseVerticalKind(string(c.Kind)); err != nil {
		return err
	}
	if c.ChunkSize < 0 || c.Overlap < 0 {
		return fmt.Errorf("%w: chunk size and overlap must be non-negative", ErrInvalidInput)
	}
	if c.ChunkSize > 0 && c.Overlap >= c.ChunkSize {
		return fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", ErrInvalidInput, c.Overlap, c.ChunkSize)
	}
	if c.Kind == KindStructured && c.Overlap != 0 {
		return fmt.Errorf("%w: structured verticals require zero overlap", ErrInvalidInput)
	}
	return nil
}

// VerticalNames holds the derived resource names for one vertical.
// Names are a pure function of (prefix, kind): identical inputs always
// yield identical names.
type VerticalNames struct {
	DataSource string
	Skillset   string
	Index      string
	Indexer    string
}

// DeriveNames computes the resource names for a prefix and kind.
func DeriveNames(prefix string, kind VerticalKind) VerticalNames {
	suffix := ""
	if kind == KindStructured {
		suffix = "-json"
	}
	return VerticalNames{
		DataSource: "ds-" + prefix + suffix,
		Skillset:   "ss-" + prefix + suffix,
		Index:      "idx-" + prefix + suffix,
		Indexer:    "ix-" + prefix + suffix,
	}
}

// Name returns the derived name for a resource type.
func (n VerticalNames) Name(t ResourceType) string {
	switch t {
	case ResourceDataSource:
		return n.DataSource
	case ResourceSkillset:
		return n.Skillset
	case ResourceIndex:
		return n.Index
	case ResourceIndexer:
		return n.Indexer
	}
	return ""
}

// ResourceAction records what the manager did to one resource.
type ResourceAction string

const (
	ActionCreated   ResourceAction = "created"
	ActionUpdated   ResourceAction = "updated"
	ActionUnchanged ResourceAction = "unchanged"
	ActionDeleted   ResourceAction = "deleted"
	ActionAbsent    ResourceAction = "already absent"
	ActionFailed    ResourceAction = "failed"
)

// ResourceState is the provisioning outcome for one pipeline resource.
type ResourceState struct {
	// Type is the resource's place in the pipeline graph.
	Type ResourceType

	// Name is the derived resource name.
	Name string

	// Action is what the manager did this call.
	Action ResourceAction

	// DefinitionHash is the hash of the applied definition, empty for
	// teardown results.
	DefinitionHash string

	// Err carries the failure for ActionFailed results.
	Err error
}

// DefinitionHash computes the content hash of an intended resource
// definition. Definitions are hashed over their canonical JSON encoding
// (Go marshals map keys in sorted order) so semantically identical
// definitions always hash equal.
func DefinitionHash(definition any) (string, error) {
	data, err := json.Marshal(definition)
	if err != nil {
		return "", fmt.Errorf("marshal definition: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
