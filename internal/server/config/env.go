package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables. An optional
// .env file in the working directory is loaded first; a missing file is not
// an error.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	setString(&config.EndpointAddr, "ADDRESS")
	setString(&config.Environment, "ENVIRONMENT")
	setString(&config.Application, "APPLICATION")
	setString(&config.DatabaseDSN, "DATABASE_DSN")
	setString(&config.FrontendURL, "FRONTEND_URL")

	setString(&config.AccessTokenSecret, "JWT_SECRET_KEY")
	setString(&config.RefreshTokenSecret, "JWT_REFRESH_SECRET_KEY")
	setDuration(&config.AccessTokenValidity, "JWT_EXPIRES_IN")
	setDuration(&config.RefreshTokenValidity, "JWT_REFRESH_EXPIRES_IN")

	setInt(&config.OtpLength, "OTP_LENGTH")
	if v, ok := lookupInt("OTP_EXPIRES_IN_MINUTES"); ok {
		config.OtpValidity = time.Duration(v) * time.Minute
	}
	setInt(&config.PasswordHashCost, "PASSWORD_HASH_COST")

	setString(&config.MailHost, "MAIL_HOST")
	setInt(&config.MailPort, "MAIL_PORT")
	setString(&config.MailUser, "MAIL_USER")
	setString(&config.MailPassword, "MAIL_PASSWORD")
	setString(&config.MailSender, "MAIL_SENDER")
	setDuration(&config.MailTimeout, "MAIL_TIMEOUT")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := lookupInt(key); ok {
		*dst = v
	}
}

func lookupInt(key string) (int, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func setDuration(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
	}
}
