package config

import "github.com/caarlos0/env/v10"

// Config centralizes the service configuration.
type Config struct {
	Port         string `env:"PORT" envDefault:"8080"`
	MongoURI     string `env:"MONGODB_URI,required"`
	DatabaseName string `env:"MONGODB_DB" envDefault:"streetsense"`
	JWTSecret    string `env:"JWT_SECRET,required"`

	RedisAddr     string `env:"REDIS_ADDRESS"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME" envDefault:"StreetSense"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"false"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

	// Daily per-user cap on problem creation and per-email cap on OTP sends.
	ProblemDailyLimit int `env:"PROBLEM_DAILY_LIMIT" envDefault:"20"`
	OTPSendLimit      int `env:"OTP_SEND_LIMIT" envDefault:"3"`
}

// LoadConfig reads the configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
