package config

type AppConfig struct {
	ServiceName    string
	DebugMode      bool
	HTTPConfig     *HTTPConfig
	GradingConfig  *GradingConfig
	RedisConfig    *RedisConfig
	PostgresConfig *PostgresConfig
	JwtConfig      *JwtConfig
	LogConfig      *LogConfig
}

func NewSystemConfig() *AppConfig {
	return &AppConfig{
		ServiceName:    getEnv("SERVICE_NAME", "attempt-service"),
		DebugMode:      getBoolEnv("DEBUG_MODE"),
		HTTPConfig:     NewHTTPConfig(),
		GradingConfig:  NewGradingConfig(),
		RedisConfig:    NewRedisConfig(),
		PostgresConfig: NewPostgresConfig(),
		JwtConfig:      NewJwtConfig(),
		LogConfig:      NewLogConfig(),
	}
}
