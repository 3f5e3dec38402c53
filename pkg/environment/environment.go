// Package environment defines the application runtime environment and
// helpers for branching on it (log format, cookie security, etc.).
package environment

// Environment represents the application runtime environment.
type Environment string

const (
	// Development for local development.
	Development Environment = "development"
	// Staging for pre-production environments.
	Staging Environment = "staging"
	// Production for production deployments.
	Production Environment = "production"
)

// IsProduction reports whether env denotes production.
func IsProduction(env Environment) bool {
	return env == Production || env == "prod"
}

// IsDevelopment reports whether env denotes development.
func IsDevelopment(env Environment) bool {
	return env == Development || env == "dev"
}

// IsStaging reports whether env denotes staging.
func IsStaging(env Environment) bool {
	return env == Staging || env == "stage"
}
