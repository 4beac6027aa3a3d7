package apikey

import (
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/avkern/authgate/internal/observability"
)

// BuildStore constructs the credential store described by config. Seed
// keys from the configuration are loaded into memory stores. When a
// circuit breaker is configured, the store is wrapped with one.
func BuildStore(config *Config, logger observability.Logger) (Store, error) {
	if logger == nil {
		logger = observability.NopLogger()
	}

	var store Store
	switch config.GetEffectiveStoreType() {
	case StoreTypeRedis:
		rc := config.Store.Redis
		client := redis.NewClient(&redis.Options{
			Addr:     rc.Addr,
			Password: passwordFromEnv(rc.PasswordEnv),
			DB:       rc.DB,
		})
		rs, err := NewRedisStore(client, WithRedisStoreLogger(logger))
		if err != nil {
			return nil, err
		}
		store = rs
	default:
		ms := NewMemoryStore()
		if config != nil && len(config.Keys) > 0 {
			records := make([]*Record, 0, len(config.Keys))
			for i := range config.Keys {
				records = append(records, config.Keys[i].ToRecord())
			}
			ms.ReplaceAll(records)
		}
		store = ms
	}

	if config != nil && config.Breaker != nil && config.Breaker.Enabled {
		store = NewBreakerStore(store, config.Breaker, WithBreakerStoreLogger(logger))
	}

	return store, nil
}

// Seeder is implemented by stores whose record set can be replaced
// wholesale, such as the in-memory store.
type Seeder interface {
	ReplaceAll(records []*Record)
}

// ReloadSeeds replaces the store's records with the configuration's
// seed keys. Breaker wrappers are unwrapped first. Returns false when
// the store does not support reseeding.
func ReloadSeeds(store Store, config *Config) bool {
	if bs, ok := store.(*BreakerStore); ok {
		store = bs.Underlying()
	}

	seeder, ok := store.(Seeder)
	if !ok {
		return false
	}

	var records []*Record
	if config != nil {
		records = make([]*Record, 0, len(config.Keys))
		for i := range config.Keys {
			records = append(records, config.Keys[i].ToRecord())
		}
	}
	seeder.ReplaceAll(records)
	return true
}

func passwordFromEnv(env string) string {
	if env == "" {
		return ""
	}
	return os.Getenv(env)
}
