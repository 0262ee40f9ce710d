package azure

import (
	"fmt"
	"strings"

	"github.com/orbital-labs/corpus-cli/internal/core/domain"
	"github.com/orbital-labs/corpus-cli/internal/core/ports/driven"
)

const (
	// embeddingDimensions matches the text-embedding-3-small model.
	embeddingDimensions = 1536

	// vectorProfile and friends name the index's vector configuration.
	vectorProfile   = "default-vector-profile"
	vectorAlgorithm = "default-hnsw-algorithm"
	vectorizerName  = "default-vectorizer"
)

// BuilderConfig carries the service-level settings every definition
// embeds: the storage connection for data sources and the embedding
// deployment for vectorization.
type BuilderConfig struct {
	// StorageConnectionString authorises the data source's reads.
	StorageConnectionString string `toml:"storage_connection_string"`

	// OpenAIEndpoint, OpenAIAPIKey and EmbeddingDeployment configure the
	// integrated vectorizer and the embedding skill.
	OpenAIEndpoint      string `toml:"openai_endpoint"`
	OpenAIAPIKey        string `toml:"openai_api_key"`
	EmbeddingDeployment string `toml:"embedding_deployment"`
}

// Validate checks the builder configuration.
func (c *BuilderConfig) Validate() error {
	if c.StorageConnectionString == "" {
		return fmt.Errorf("%w: storage_connection_string is required", domain.ErrInvalidInput)
	}
	if c.OpenAIEndpoint == "" || c.EmbeddingDeployment == "" {
		return fmt.Errorf("%w: openai_endpoint and embedding_deployment are required", domain.ErrInvalidInput)
	}
	return nil
}

// Builder produces the four concrete resource definitions for a vertical.
// It owns all service schema: field lists, vector profiles, chunking
// skills and parsing modes. The manager upstream owns ordering and
// idempotency and treats the bodies as opaque.
type Builder struct {
	cfg BuilderConfig
}

var _ driven.DefinitionBuilder = (*Builder)(nil)

// NewBuilder creates a definition builder.
func NewBuilder(cfg BuilderConfig) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Builder{cfg: cfg}, nil
}

// Build returns the vertical's definitions in creation order.
func (b *Builder) Build(cfg domain.VerticalConfig, names domain.VerticalNames) ([]driven.Definition, error) {
	return []driven.Definition{
		{Type: domain.ResourceDataSource, Name: names.DataSource, Body: b.dataSource(cfg, names)},
		{Type: domain.ResourceSkillset, Name: names.Skillset, Body: b.skillset(cfg, names)},
		{Type: domain.ResourceIndex, Name: names.Index, Body: b.index(names)},
		{Type: domain.ResourceIndexer, Name: names.Indexer, Body: b.indexer(cfg, names)},
	}, nil
}

// dataSource points the pipeline at the staging container.
func (b *Builder) dataSource(cfg domain.VerticalConfig, names domain.VerticalNames) map[string]any {
	return map[string]any{
		"name": names.DataSource,
		"type": "azureblob",
		"credentials": map[string]any{
			"connectionString": b.cfg.StorageConnectionString,
		},
		"container": map[string]any{
			"name": cfg.Container,
		},
		"description": fmt.Sprintf("Staged content for the %q vertical", cfg.Prefix),
	}
}

// skillset chunks documents to the vertical's chunk policy and embeds
// each chunk.
func (b *Builder) skillset(cfg domain.VerticalConfig, names domain.VerticalNames) map[string]any {
	split := map[string]any{
		"@odata.type":       "#Microsoft.Skills.Text.SplitSkill",
		"name":              "chunking",
		"description":       "Split content into indexable chunks",
		"context":           "/document",
		"textSplitMode":     "pages",
		"maximumPageLength": cfg.ChunkSize,
		"pageOverlapLength": cfg.Overlap,
		"inputs": []any{
			map[string]any{"name": "text", "source": "/document/content"},
		},
		"outputs": []any{
			map[string]any{"name": "textItems", "targetName": "chunks"},
		},
	}

	embed := map[string]any{
		"@odata.type":  "#Microsoft.Skills.Text.AzureOpenAIEmbeddingSkill",
		"name":         "embeddings",
		"description":  "Generate embeddings for content",
		"context":      "/document",
		"resourceUri":  b.cfg.OpenAIEndpoint,
		"apiKey":       b.cfg.OpenAIAPIKey,
		"deploymentId": b.cfg.EmbeddingDeployment,
		"inputs": []any{
			map[string]any{"name": "text", "source": "/document/content"},
		},
		"outputs": []any{
			map[string]any{"name": "embedding", "targetName": "contentVector"},
		},
	}

	return map[string]any{
		"name":        names.Skillset,
		"description": fmt.Sprintf("Enrichment for the %q vertical", cfg.Prefix),
		"skills":      []any{split, embed},
	}
}

// index defines the searchable schema with a vector field wired to the
// integrated vectorizer.
func (b *Builder) index(names domain.VerticalNames) map[string]any {
	fields := []any{
		map[string]any{
			"name": "id", "type": "Edm.String",
			"key": true, "filterable": true, "searchable": false, "retrievable": true,
		},
		map[string]any{
			"name": "title", "type": "Edm.String",
			"searchable": true, "filterable": false, "retrievable": true,
			"analyzer": "standard.lucene",
		},
		map[string]any{
			"name": "content", "type": "Edm.String",
			"searchable": true, "filterable": false, "sortable": false,
			"facetable": false, "retrievable": true,
			"analyzer": "standard.lucene",
		},
		map[string]any{
			"name": "source_url", "type": "Edm.String",
			"searchable": false, "filterable": true, "retrievable": true,
		},
		map[string]any{
			"name": "lastModified", "type": "Edm.DateTimeOffset",
			"filterable": true, "sortable": true, "retrievable": true,
		},
		map[string]any{
			"name": "size", "type": "Edm.Int64",
			"filterable": true, "sortable": true, "retrievable": true,
		},
		map[string]any{
			"name": "file_extension", "type": "Edm.String",
			"filterable": true, "facetable": true, "retrievable": true,
		},
		map[string]any{
			"name": "content_vector", "type": "Collection(Edm.Single)",
			"searchable": true, "retrievable": true,
			"dimensions":          embeddingDimensions,
			"vectorSearchProfile": vectorProfile,
		},
	}

	return map[string]any{
		"name":   names.Index,
		"fields": fields,
		"vectorSearch": map[string]any{
			"algorithms": []any{
				map[string]any{
					"name": vectorAlgorithm,
					"kind": "hnsw",
					"hnswParameters": map[string]any{
						"metric":         "cosine",
						"m":              4,
						"efConstruction": 400,
						"efSearch":       500,
					},
				},
			},
			"profiles": []any{
				map[string]any{
					"name":       vectorProfile,
					"algorithm":  vectorAlgorithm,
					"vectorizer": vectorizerName,
				},
			},
			"vectorizers": []any{
				map[string]any{
					"name": vectorizerName,
					"kind": "azureOpenAI",
					"azureOpenAIParameters": map[string]any{
						"resourceUri":  b.cfg.OpenAIEndpoint,
						"deploymentId": b.cfg.EmbeddingDeployment,
						"apiKey":       b.cfg.OpenAIAPIKey,
					},
				},
			},
		},
	}
}

// indexer ties the other three resources together. The structured kind
// switches to JSON parsing; both kinds exclude metadata sidecars so they
// never become corpus documents.
func (b *Builder) indexer(cfg domain.VerticalConfig, names domain.VerticalNames) map[string]any {
	parsingMode := "default"
	if cfg.Kind == domain.KindStructured {
		parsingMode = "json"
	}

	excluded := append([]string{domain.SidecarSuffix}, cfg.ExcludedExtensions...)

	configuration := map[string]any{
		"dataToExtract":                "contentAndMetadata",
		"parsingMode":                  parsingMode,
		"excludedFileNameExtensions":   strings.Join(excluded, ","),
		"failOnUnsupportedContentType": false,
		"failOnUnprocessableDocument":  false,
	}
	if len(cfg.IndexedExtensions) > 0 {
		configuration["indexedFileNameExtensions"] = strings.Join(cfg.IndexedExtensions, ",")
	}

	return map[string]any{
		"name":            names.Indexer,
		"dataSourceName":  names.DataSource,
		"skillsetName":    names.Skillset,
		"targetIndexName": names.Index,
		"parameters": map[string]any{
			"configuration": configuration,
		},
		"fieldMappings": []any{
			fieldMapping("metadata_storage_path", "id", "base64Encode"),
			fieldMapping("metadata_storage_name", "title", ""),
			fieldMapping("content", "content", ""),
			fieldMapping("metadata_storage_path", "source_url", ""),
			fieldMapping("metadata_storage_last_modified", "lastModified", ""),
			fieldMapping("metadata_storage_size", "size", ""),
			fieldMapping("metadata_storage_file_extension", "file_extension", ""),
		},
		"outputFieldMappings": []any{
			fieldMapping("/document/contentVector", "content_vector", ""),
		},
	}
}

// fieldMapping builds one indexer field mapping, with an optional
// mapping function.
func fieldMapping(source, target, function string) map[string]any {
	mapping := map[string]any{
		"sourceFieldName": source,
		"targetFieldName": target,
	}
	if function != "" {
		mapping["mappingFunction"] = map[string]any{"name": function}
	}
	return mapping
}
