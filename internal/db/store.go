// exposes a Store interface that is passed to API calls w/ param requirements
package db

import (
	"github.com/Nixie-Tech-LLC/stheno/internal/model"
	"github.com/jmoiron/sqlx"
)

type Store interface {
	// screen functions
	GetScreenByCode(code string) (*model.Screen, error)
	TouchScreenPing(screenID int) error

	// schedule functions
	ListSchedulesForScreen(screenID int) ([]model.Schedule, error)
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
// required so linter doesn't complain
var _ Store = (*pgStore)(nil)

func NewStore() Store {
	return &pgStore{db: DB}
}
