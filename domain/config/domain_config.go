package config

import (
	"fmt"
	"time"
)

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Idea constraints
	MinIdeaLength  int
	MaxIdeaLength  int
	MaxTagsPerIdea int

	// Graph constraints
	MaxIdeasPerProfile int
	MaxEdgesPerIdea    int

	// Similarity fallback: how many of the most recent ideas are scanned
	// when the vector index cannot answer
	RecentIdeaWindow int

	// Collective selection
	MaxSeedIdeas     int
	MaxExpandedIdeas int
	MaxContextChars  int

	// Edge constraints
	MaxEdgeWeight     float64
	MinEdgeWeight     float64
	DefaultEdgeWeight float64

	// Time constraints
	EmbeddingTimeout  time.Duration
	GenerationTimeout time.Duration
	LockTimeout       time.Duration

	// Validation settings
	AllowSelfEdges      bool
	AllowDuplicateEdges bool

	// Feature flags
	EnableAutoTagging bool
	EnableAutolink    bool
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MinIdeaLength:  1,
		MaxIdeaLength:  10000,
		MaxTagsPerIdea: 20,

		MaxIdeasPerProfile: 100000,
		MaxEdgesPerIdea:    50,

		RecentIdeaWindow: 200,

		MaxSeedIdeas:     50,
		MaxExpandedIdeas: 200,
		MaxContextChars:  12000,

		MaxEdgeWeight:     1.0,
		MinEdgeWeight:     0.0,
		DefaultEdgeWeight: 0.5,

		EmbeddingTimeout:  30 * time.Second,
		GenerationTimeout: 120 * time.Second,
		LockTimeout:       30 * time.Second,

		AllowSelfEdges:      false,
		AllowDuplicateEdges: false,

		EnableAutoTagging: true,
		EnableAutolink:    true,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// More restrictive limits for production
	config.MaxIdeasPerProfile = 50000
	config.MaxIdeaLength = 5000
	config.MaxEdgesPerIdea = 30

	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// More permissive for development
	config.MaxIdeasPerProfile = 1000000
	config.AllowDuplicateEdges = false
	config.EmbeddingTimeout = 5 * time.Minute
	config.GenerationTimeout = 10 * time.Minute

	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.MinIdeaLength < 1 {
		return fmt.Errorf("MinIdeaLength must be at least 1, got %d", c.MinIdeaLength)
	}
	if c.MaxIdeaLength < c.MinIdeaLength {
		return fmt.Errorf("MaxIdeaLength (%d) must not be below MinIdeaLength (%d)", c.MaxIdeaLength, c.MinIdeaLength)
	}
	if c.RecentIdeaWindow < 1 {
		return fmt.Errorf("RecentIdeaWindow must be at least 1, got %d", c.RecentIdeaWindow)
	}
	if c.MinEdgeWeight < 0 || c.MaxEdgeWeight > 1 || c.MinEdgeWeight > c.MaxEdgeWeight {
		return fmt.Errorf("edge weight bounds [%f, %f] must sit inside [0, 1]", c.MinEdgeWeight, c.MaxEdgeWeight)
	}
	return nil
}
