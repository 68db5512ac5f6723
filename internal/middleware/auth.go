package middleware

import (
	"context"
	"net/http"
	"os"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"github.com/markbates/goth"
	"github.com/markbates/goth/providers/discord"
	"github.com/markbates/goth/providers/google"
	"github.com/openmat/ringside/internal/admin"
	"github.com/openmat/ringside/internal/store"
)

type ContextKey string

const AdminIDKey ContextKey = "adminID"

func InitAuth() {
	discordKey := os.Getenv("DISCORD_KEY")
	discordSecret := os.Getenv("DISCORD_SECRET")
	discordCallbackURL := os.Getenv("DISCORD_CALLBACK_URL")

	googleKey := os.Getenv("GOOGLE_KEY")
	googleSecret := os.Getenv("GOOGLE_SECRET")
	googleCallbackURL := os.Getenv("GOOGLE_CALLBACK_URL")

	goth.UseProviders(
		discord.New(discordKey, discordSecret, discordCallbackURL, discord.ScopeIdentify, discord.ScopeEmail),
		google.New(googleKey, googleSecret, googleCallbackURL, "email", "profile"),
	)
}

// RequireAdmin gates desk operations (ring/division setup, scheduling,
// results) behind an admin session. Spectator reads stay open.
func RequireAdmin(sessionManager *scs.SessionManager, adminStore *store.AdminStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			adminIDStr := sessionManager.GetString(r.Context(), "adminID")
			if adminIDStr == "" {
				http.Error(w, "admin login required", http.StatusUnauthorized)
				return
			}

			adminID, err := uuid.Parse(adminIDStr)
			if err != nil {
				sessionManager.Remove(r.Context(), "adminID")
				http.Error(w, "admin login required", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), AdminIDKey, adminID)

			// Add the admin to context so handlers can get it whenever they want
			a, err := adminStore.GetAdmin(ctx, adminID)
			if err == nil {
				ctx = context.WithValue(ctx, admin.AdminKey, a)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetAdminIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	val := ctx.Value(AdminIDKey)
	if val == nil {
		return uuid.Nil, false
	}

	id, ok := val.(uuid.UUID)
	return id, ok
}

func GetAuthenticatedAdmin(ctx context.Context) *admin.Admin {
	val := ctx.Value(admin.AdminKey)
	if val == nil {
		return nil
	}
	a, ok := val.(*admin.Admin)
	if !ok {
		return nil
	}
	return a
}
