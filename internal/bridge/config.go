package bridge

// RedisConfig holds connection settings for the Redis pub/sub bridge.
type RedisConfig struct {
	Addr     string // Redis address, e.g. "localhost:6379"
	Password string // optional
	DB       int
	Prefix   string // pub/sub channel prefix
}

// DefaultRedisConfig returns a RedisConfig with sensible defaults.
func DefaultRedisConfig(addr, password string) *RedisConfig {
	return &RedisConfig{
		Addr:     addr,
		Password: password,
		Prefix:   "tasknest:ws:",
	}
}
