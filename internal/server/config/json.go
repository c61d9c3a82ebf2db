package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dkotenko/authflow/internal/flagx"
	"github.com/dkotenko/authflow/internal/timex"
)

// JsonConfig is the DTO for the optional JSON config file. Interval fields use
// timex.Duration so both "15m" strings and integer nanoseconds parse.
type JsonConfig struct {
	EndpointAddr string `json:"endpoint_addr"`
	Environment  string `json:"environment"`
	Application  string `json:"application"`
	DatabaseDSN  string `json:"database_dsn"`
	FrontendURL  string `json:"frontend_url"`

	AccessTokenSecret    string         `json:"access_token_secret"`
	RefreshTokenSecret   string         `json:"refresh_token_secret"`
	AccessTokenValidity  timex.Duration `json:"access_token_validity"`
	RefreshTokenValidity timex.Duration `json:"refresh_token_validity"`

	OtpLength        int            `json:"otp_length"`
	OtpValidity      timex.Duration `json:"otp_validity"`
	PasswordHashCost int            `json:"password_hash_cost"`

	MailHost     string         `json:"mail_host"`
	MailPort     int            `json:"mail_port"`
	MailUser     string         `json:"mail_user"`
	MailPassword string         `json:"mail_password"`
	MailSender   string         `json:"mail_sender"`
	MailTimeout  timex.Duration `json:"mail_timeout"`
}

// parseJson overlays configuration values from the JSON file named by the
// -c/-config flags, if any. Set fields win over defaults and environment;
// zero-valued fields leave the current value alone.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	overlayString(&config.EndpointAddr, c.EndpointAddr)
	overlayString(&config.Environment, c.Environment)
	overlayString(&config.Application, c.Application)
	overlayString(&config.DatabaseDSN, c.DatabaseDSN)
	overlayString(&config.FrontendURL, c.FrontendURL)
	overlayString(&config.AccessTokenSecret, c.AccessTokenSecret)
	overlayString(&config.RefreshTokenSecret, c.RefreshTokenSecret)
	overlayDuration(&config.AccessTokenValidity, c.AccessTokenValidity)
	overlayDuration(&config.RefreshTokenValidity, c.RefreshTokenValidity)
	if c.OtpLength != 0 {
		config.OtpLength = c.OtpLength
	}
	overlayDuration(&config.OtpValidity, c.OtpValidity)
	if c.PasswordHashCost != 0 {
		config.PasswordHashCost = c.PasswordHashCost
	}
	overlayString(&config.MailHost, c.MailHost)
	if c.MailPort != 0 {
		config.MailPort = c.MailPort
	}
	overlayString(&config.MailUser, c.MailUser)
	overlayString(&config.MailPassword, c.MailPassword)
	overlayString(&config.MailSender, c.MailSender)
	overlayDuration(&config.MailTimeout, c.MailTimeout)
}

func overlayString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func overlayDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
