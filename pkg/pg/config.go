package pg

import "time"

type Config struct {
	DatabaseURL     string        `env:"DATABASE_URL,required"`                                  // DatabaseURL is the PostgreSQL connection string.
	MaxPoolSize     int32         `env:"DATABASE_MAX_POOL_SIZE" envDefault:"10"`                 // MaxPoolSize is the maximum number of pooled connections.
	MinPoolSize     int32         `env:"DATABASE_MIN_POOL_SIZE" envDefault:"2"`                  // MinPoolSize is the minimum number of idle connections kept open.
	MaxConnLifetime time.Duration `env:"DATABASE_MAX_CONN_LIFETIME" envDefault:"30m"`            // MaxConnLifetime is the maximum amount of time a connection may be reused.
	RetryAttempts   int           `env:"DATABASE_RETRY_ATTEMPTS" envDefault:"3"`                 // RetryAttempts is the number of connection attempts at startup.
	RetryInterval   time.Duration `env:"DATABASE_RETRY_INTERVAL" envDefault:"5s"`                // RetryInterval is the base interval between connection attempts.
	MigrationsPath  string        `env:"DATABASE_MIGRATIONS_PATH" envDefault:"migrations"`       // MigrationsPath is the path to the goose migrations directory.
	MigrationsTable string        `env:"DATABASE_MIGRATIONS_TABLE" envDefault:"goose_db_version"` // MigrationsTable stores the applied migration version.
}
