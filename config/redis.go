package config

// RedisConfig contains Redis configuration for the session revocation store.
// Leave Addr empty to run without server-side revocation (sign-out then
// relies on cookie clearing alone).
type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:""`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
}

// Enabled reports whether a Redis address is configured.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }
