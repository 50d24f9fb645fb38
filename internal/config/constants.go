package config

import "time"

// Application constants
const (
	AppName    = "DOE Lab"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces environment variables, e.g. DOELAB_SERVER_PORT
	EnvPrefix = "DOELAB"

	DefaultPort           = 8000
	DefaultRequestTimeout = 60 * time.Second

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogFile   = "logs/doelab.log"

	// Request bounds
	DefaultMaxDesignRuns  = 100_000
	DefaultMaxUploadBytes = 10 << 20 // 10MB
	DefaultMaxSampleSize  = 1_000_000

	// Synthetic generation
	DefaultGeneratorWorkers = 10
	DefaultGeneratorTimeout = 5 * time.Minute
)

// API paths
const (
	APIBasePath     = "/api"
	HealthEndpoint  = "/health"
	MetricsEndpoint = "/metrics"
)
