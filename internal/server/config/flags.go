package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/skinkeeper/internal/envx"
	"github.com/dmitrijs2005/skinkeeper/internal/flagx"
)

var serverFlags = []string{"-a", "-d", "-s", "-t", "-r", "-i", "-k", "-e", "-o", "-l", "-p", "-v"}

// parseFlags populates server Config fields from command-line flags.
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-i string   ingredient service base URL
//	-k string   ingredient service API key
//	-e string   Redis URL for the ingredient cache
//	-o string   comma separated CORS origins
//	-l string   auth rate limit ("20-M")
//	-p string   profile completion policy (sticky|strict)
//	-v string   log level
//
// os.Args is filtered to these flags first so the -c config flag and
// anything else on the command line do not trip the parser.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshTokenValidity := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")

	fs.StringVar(&config.IngredientServiceURL, "i", config.IngredientServiceURL, "ingredient service URL")
	fs.StringVar(&config.IngredientServiceKey, "k", config.IngredientServiceKey, "ingredient service API key")
	fs.StringVar(&config.RedisURL, "e", config.RedisURL, "redis URL")
	origins := fs.String("o", "", "allowed CORS origins, comma separated")
	fs.StringVar(&config.AuthRateLimit, "l", config.AuthRateLimit, "auth rate limit")
	fs.StringVar(&config.CompletionPolicy, "p", config.CompletionPolicy, "profile completion policy")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidity) * time.Minute
	if *origins != "" {
		config.AllowedOrigins = envx.SplitList(*origins)
	}
}
