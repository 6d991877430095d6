package viewer

import "github.com/kyaoi/pdfview/internal/prefs"

// Mode is how pages are laid out on screen.
type Mode string

const (
	ModePaginated  Mode = "paginated"
	ModeContinuous Mode = "continuous"
)

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == ModeContinuous {
		return ModePaginated
	}
	return ModeContinuous
}

func parseMode(value string) (Mode, bool) {
	switch Mode(value) {
	case ModePaginated, ModeContinuous:
		return Mode(value), true
	default:
		return "", false
	}
}

// LoadMode reads the persisted display mode. Anything missing or unknown
// means paginated.
func LoadMode(store prefs.Store) Mode {
	if store == nil {
		return ModePaginated
	}
	value, ok := store.Get(prefs.ViewModeKey)
	if !ok {
		return ModePaginated
	}
	if mode, ok := parseMode(value); ok {
		return mode
	}
	return ModePaginated
}

// SaveMode persists mode.
func SaveMode(store prefs.Store, mode Mode) error {
	if store == nil {
		return nil
	}
	return store.Set(prefs.ViewModeKey, string(mode))
}
