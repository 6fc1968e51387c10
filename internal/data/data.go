package data

import (
	"github.com/groupmute/groupmute/internal/biz/repo"
	"github.com/groupmute/groupmute/internal/logger"
)

// Repositories contains all repositories
type Repositories struct {
	Preferences repo.PreferencesRepo
	MuteLogs    repo.MuteLogRepo
	Platform    *PlatformClient

	store *Store
}

// NewRepositories creates all repositories over one preference database
func NewRepositories(dbPath, callbackURL string, log *logger.Logger) (*Repositories, error) {
	store, err := OpenStore(dbPath)
	if err != nil {
		return nil, err
	}

	return &Repositories{
		Preferences: NewPreferencesRepo(store),
		MuteLogs:    NewMuteLogRepo(store),
		Platform:    NewPlatformClient(callbackURL, log),
		store:       store,
	}, nil
}

// Close releases the database
func (r *Repositories) Close() error {
	return r.store.Close()
}
