// Package config loads the service configuration.
//
// Values are layered, later sources winning:
//
//	1. Default()
//	2. a YAML file (DOELAB_CONFIG_FILE, config.yaml or configs/config.yaml)
//	3. .env.local and .env, which only fill variables not already set
//	4. DOELAB_* environment variables
//
// Nested fields map to underscore-joined names:
//
//	DOELAB_SERVER_PORT=8000
//	DOELAB_LOGGING_LEVEL=debug
//	DOELAB_SECURITY_ALLOWED_ORIGINS=http://localhost:3000,https://lab.example.com
//	DOELAB_GENERATOR_WORKERS=10
//
// The generator also honours OPENAI_API_KEY, OPENAI_MODEL and
// OPENAI_BASE_URL when its own variables are unset.
package config
