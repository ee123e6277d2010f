package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gsbingo17/tms-migrate/pkg/codec"
)

// Config represents the main configuration structure
type Config struct {
	// Attachment storage configuration
	Storage StorageConfig `json:"storage"`

	// Conversion options shared by every attachment in a run
	Processing ProcessingConfig `json:"processing"`

	// Codec limits
	Codec CodecConfig `json:"codec"`

	// Batch execution parameters
	Batch BatchConfig `json:"batch"`

	// Path to the field-mapping list (JSON or YAML)
	MappingFile string `json:"mappingFile"`

	// Path to the source records file (JSON array of objects)
	RecordsFile string `json:"recordsFile"`

	// Path the transformed records are written to
	OutputFile string `json:"outputFile"`
}

// StorageConfig selects and parameterizes the attachment store backend
type StorageConfig struct {
	Backend       string        `json:"backend"` // "memory", "mongodb" or "elasticsearch"
	MongoDB       MongoConfig   `json:"mongodb,omitempty"`
	Elasticsearch ElasticConfig `json:"elasticsearch,omitempty"`
}

// MongoConfig represents the MongoDB store configuration
type MongoConfig struct {
	ConnectionString string `json:"connectionString"` // MongoDB connection string
	Database         string `json:"database"`         // MongoDB database name
	Collection       string `json:"collection"`       // Attachment collection name
}

// ElasticConfig represents the Elasticsearch store configuration
type ElasticConfig struct {
	Addresses []string `json:"addresses"` // Elasticsearch addresses
	Username  string   `json:"username"`  // Elasticsearch username
	Password  string   `json:"password"`  // Elasticsearch password
	APIKey    string   `json:"apiKey"`    // Elasticsearch API key (alternative to username/password)
	Index     string   `json:"index"`     // Attachment index name

	// HTTPS configuration
	TLS                    bool   `json:"tls"`                    // Enable TLS/HTTPS (default: false)
	CACertPath             string `json:"caCertPath"`             // Path to CA certificate file for server verification
	SkipVerify             bool   `json:"skipVerify"`             // Skip server certificate verification (not recommended for production)
	CertificateFingerprint string `json:"certificateFingerprint"` // Certificate fingerprint for verification
	ConnectionTimeout      int    `json:"connectionTimeout"`      // Connection timeout in seconds
	ResponseTimeout        int    `json:"responseTimeout"`        // Response timeout in seconds
}

// ProcessingConfig represents the per-run conversion options
type ProcessingConfig struct {
	SourceProvider     string `json:"sourceProvider"`     // e.g. "zephyr"
	TargetProvider     string `json:"targetProvider"`     // e.g. "qtest"
	Format             string `json:"format"`             // "JSON", "XML", "HTML" or "MARKDOWN"
	ExportImages       bool   `json:"exportImages"`       // Process image attachments
	PreserveFormatting bool   `json:"preserveFormatting"` // Keep original whitespace inside converted content
}

// CodecConfig represents the codec limits
type CodecConfig struct {
	ChunkSize   int   `json:"chunkSize"`   // Chunk size in bytes for large payloads
	MemoryLimit int64 `json:"memoryLimit"` // Maximum buffered bytes for a single attachment
}

// BatchConfig represents the batch execution parameters
type BatchConfig struct {
	MaxConcurrentJobs    int  `json:"maxConcurrentJobs"`    // Number of attachments converted in parallel
	CollectDetailedStats bool `json:"collectDetailedStats"` // Record per-item timing
}

// LoadConfig loads the configuration from a file
func LoadConfig(configPath string) (*Config, error) {
	// Set default config path if not provided
	if configPath == "" {
		configPath = "tms_migrate_config.json"
	}

	// Read the config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse the config
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Validate the config
	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	// Set default values for codec limits
	if config.Codec.ChunkSize <= 0 {
		config.Codec.ChunkSize = codec.DefaultChunkSize
	}

	if config.Codec.MemoryLimit <= 0 {
		config.Codec.MemoryLimit = codec.DefaultMemoryLimit
	}

	// Set default values for batch execution
	if config.Batch.MaxConcurrentJobs <= 0 {
		config.Batch.MaxConcurrentJobs = 4 // Default to 4 concurrent conversions
	}

	// Set default storage backend
	if config.Storage.Backend == "" {
		config.Storage.Backend = "memory"
	}

	return &config, nil
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	// Validate storage backend
	switch config.Storage.Backend {
	case "", "memory":
		// In-memory store needs no parameters
	case "mongodb":
		if config.Storage.MongoDB.ConnectionString == "" {
			return fmt.Errorf("MongoDB connection string is required")
		}
		if config.Storage.MongoDB.Database == "" {
			return fmt.Errorf("MongoDB database name is required")
		}
		if config.Storage.MongoDB.Collection == "" {
			return fmt.Errorf("MongoDB collection name is required")
		}
	case "elasticsearch":
		if len(config.Storage.Elasticsearch.Addresses) == 0 {
			return fmt.Errorf("at least one Elasticsearch address is required")
		}
		if config.Storage.Elasticsearch.Index == "" {
			return fmt.Errorf("Elasticsearch index name is required")
		}
		if config.Storage.Elasticsearch.TLS && config.Storage.Elasticsearch.CACertPath != "" {
			if _, err := os.Stat(config.Storage.Elasticsearch.CACertPath); os.IsNotExist(err) {
				return fmt.Errorf("CA certificate file not found at path: %s", config.Storage.Elasticsearch.CACertPath)
			}
		}
	default:
		return fmt.Errorf("invalid storage backend: must be 'memory', 'mongodb' or 'elasticsearch'")
	}

	// Validate processing options
	switch config.Processing.Format {
	case "", string(codec.FormatJSON), string(codec.FormatXML), string(codec.FormatHTML), string(codec.FormatMarkdown):
		// Valid
	default:
		return fmt.Errorf("invalid format: must be 'JSON', 'XML', 'HTML' or 'MARKDOWN'")
	}

	if config.Processing.SourceProvider == "" {
		return fmt.Errorf("source provider is required")
	}

	if config.Processing.TargetProvider == "" {
		return fmt.Errorf("target provider is required")
	}

	// Validate codec limits
	if config.Codec.ChunkSize > 0 && config.Codec.MemoryLimit > 0 && int64(config.Codec.ChunkSize) > config.Codec.MemoryLimit {
		return fmt.Errorf("chunk size must not exceed the memory limit")
	}

	return nil
}
