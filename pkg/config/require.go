package config

import "fmt"

// Validate reports the first setting the selected store driver cannot start without.
func (c Config) Validate() error {
	if len(c.SessionSecret) == 0 {
		return fmt.Errorf("missing required env SESSION_SECRET")
	}
	switch c.StoreDriver {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("missing required env DATABASE_URL for store driver %q", c.StoreDriver)
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("missing required env SQLITE_PATH for store driver %q", c.StoreDriver)
		}
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("missing required env MONGO_URI for store driver %q", c.StoreDriver)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}
