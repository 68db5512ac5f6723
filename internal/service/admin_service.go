package service

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/markbates/goth"
	"github.com/openmat/ringside/internal/admin"
	"github.com/openmat/ringside/internal/store"
)

type AdminService struct {
	db    *sqlx.DB
	store *store.AdminStore
}

func NewAdminService(db *sqlx.DB, store *store.AdminStore) *AdminService {
	return &AdminService{db: db, store: store}
}

// FindOrCreateAdminByProvider resolves the OAuth identity to a desk admin,
// creating the account on first login.
func (s *AdminService) FindOrCreateAdminByProvider(ctx context.Context, gothUser goth.User) (*admin.Admin, error) {
	a, err := s.store.GetAdminByProvider(ctx, gothUser.Provider, gothUser.UserID)
	if err == nil {
		return a, nil
	}

	if err == sql.ErrNoRows {
		newAdmin := &admin.Admin{
			ID:         uuid.New(),
			Email:      gothUser.Email,
			Username:   gothUser.Name,
			Provider:   &gothUser.Provider,
			ProviderID: &gothUser.UserID,
			AvatarURL:  &gothUser.AvatarURL,
		}
		err := s.store.CreateAdmin(ctx, newAdmin)
		return newAdmin, err
	}

	return nil, err
}
