package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. The types reflect how the values are used in the
// application: strings for identifiers and secrets, ints for durations and
// costs. The JWT secret is read once here and never re-derived.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing
	Kakao          KakaoConfig
}

// KakaoConfig carries the OAuth settings for the Kakao provider. The
// endpoint URIs are configurable so tests and staging environments can
// point at substitutes.
type KakaoConfig struct {
	ClientID         string // Kakao REST API key
	ClientSecret     string // optional client secret
	RedirectURI      string // callback URL registered with Kakao
	AuthorizationURI string // authorize endpoint
	TokenURI         string // token endpoint
	UserInfoURI      string // user info endpoint
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),
		Kakao: KakaoConfig{
			ClientID:         must("KAKAO_CLIENT_ID"),
			ClientSecret:     os.Getenv("KAKAO_CLIENT_SECRET"), // empty allowed
			RedirectURI:      must("KAKAO_REDIRECT_URI"),
			AuthorizationURI: getenv("KAKAO_AUTHORIZATION_URI", "https://kauth.kakao.com/oauth/authorize"),
			TokenURI:         getenv("KAKAO_TOKEN_URI", "https://kauth.kakao.com/oauth/token"),
			UserInfoURI:      getenv("KAKAO_USER_INFO_URI", "https://kapi.kakao.com/v2/user/me"),
		},
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// getenv returns the variable's value or a default when unset.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
