// Package redis connects to the Redis server that backs session.RedisStore
// and exposes a health probe for it.
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    // redis is unreachable, abort startup
//	}
//	defer client.Close()
//
//	probe := redis.Healthcheck(client)
//
// Errors wrap the go-redis driver error with errors.Join, so both the sentinel
// (ErrRedisNotReady, ErrHealthcheckFailed, ...) and the cause match errors.Is.
package redis
