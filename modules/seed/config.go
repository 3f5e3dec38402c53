package seed

import "github.com/google/uuid"

// Config identifies the well-known bootstrap rows. The service user id
// doubles as the seeding marker: if it exists, seeding already ran.
type Config struct {
	ServiceUserID   uuid.UUID `env:"SEED_SERVICE_USER_ID,required"`
	Email           string    `env:"SEED_EMAIL,required"`
	Password        string    `env:"SEED_PASSWORD,required"`
	ApplicationID   uuid.UUID `env:"SEED_APPLICATION_ID,required"`
	ApplicationName string    `env:"SEED_APPLICATION_NAME" envDefault:"client-api"`
}
