package utils

import (
	"github.com/mappichat/precinct-forecasts/src/project_types"
	"github.com/redis/go-redis/v9"
)

// OpenRedis returns nil when no address is configured.
func OpenRedis(options project_types.RedisOptions) *redis.Client {
	if options.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     options.Addr,
		Password: options.Password,
		DB:       options.DB,
	})
}
