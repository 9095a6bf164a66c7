package config

type HTTPConfig struct {
	Port int
}

func NewHTTPConfig() *HTTPConfig {
	return &HTTPConfig{
		Port: getIntEnv("HTTP_PORT", 8003),
	}
}
