package admin

import (
	"time"

	"github.com/google/uuid"
)

type ContextKey string

const AdminKey ContextKey = "admin"

// Admin is a tournament-desk operator allowed to mutate rings, divisions and
// results. Spectator reads need no account.
type Admin struct {
	ID         uuid.UUID `db:"id"`
	Email      string    `db:"email"`
	Username   string    `db:"username"`
	CreatedAt  time.Time `db:"created_at"`
	Provider   *string   `db:"provider"`
	ProviderID *string   `db:"provider_id"`
	AvatarURL  *string   `db:"avatar_url"`
}
