// Package userstore persists OAuth user profiles in Postgres. The
// store is optional: when no database is configured the auth flow
// simply skips the upsert.
package userstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"studybuddy/internal/auth"
	"studybuddy/internal/config"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        string    `bun:"id,pk"`
	Email     string    `bun:"email,notnull"`
	Name      string    `bun:"name"`
	Picture   string    `bun:"picture"`
	Verified  bool      `bun:"verified"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	LastLogin time.Time `bun:"last_login,notnull"`
}

type Store struct {
	db *bun.DB
}

func Connect(cfg *config.DatabaseConfig) *Store {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return &Store{db: db}
}

func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().Model((*User)(nil)).IfNotExists().Exec(ctx)
	return err
}

// Upsert records a login: new users are inserted, returning users get
// their profile and last_login refreshed.
func (s *Store) Upsert(ctx context.Context, info *auth.UserInfo) error {
	user := &User{
		ID:        info.ID,
		Email:     info.Email,
		Name:      info.Name,
		Picture:   info.Picture,
		Verified:  info.VerifiedEmail,
		LastLogin: time.Now(),
	}
	_, err := s.db.NewInsert().
		Model(user).
		On("CONFLICT (id) DO UPDATE").
		Set("email = EXCLUDED.email").
		Set("name = EXCLUDED.name").
		Set("picture = EXCLUDED.picture").
		Set("verified = EXCLUDED.verified").
		Set("last_login = EXCLUDED.last_login").
		Exec(ctx)
	return err
}

func (s *Store) Close() error { return s.db.Close() }
