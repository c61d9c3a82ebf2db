package config

import (
	"flag"
	"os"
	"time"

	"github.com/dkotenko/authflow/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   access-token HMAC secret
//	-r string   refresh-token HMAC secret
//	-t int      access token validity, minutes
//	-f int      refresh token validity, minutes
//	-l int      OTP digit length
//	-o int      OTP validity, minutes
//
// Args are filtered with flagx.FilterArgs first so the -c/-config flags of the
// JSON overlay do not collide.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-r", "-t", "-f", "-l", "-o"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.AccessTokenSecret, "s", config.AccessTokenSecret, "access token secret key")
	fs.StringVar(&config.RefreshTokenSecret, "r", config.RefreshTokenSecret, "refresh token secret key")

	accessValidity := fs.Int("t", int(config.AccessTokenValidity.Minutes()), "access token validity (in minutes)")
	refreshValidity := fs.Int("f", int(config.RefreshTokenValidity.Minutes()), "refresh token validity (in minutes)")
	fs.IntVar(&config.OtpLength, "l", config.OtpLength, "OTP digit length")
	otpValidity := fs.Int("o", int(config.OtpValidity.Minutes()), "OTP validity (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidity = time.Duration(*accessValidity) * time.Minute
	config.RefreshTokenValidity = time.Duration(*refreshValidity) * time.Minute
	config.OtpValidity = time.Duration(*otpValidity) * time.Minute
}
