package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types

	"github.com/joho/godotenv" // godotenv loads a local .env file when present
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Everything here is read once at startup and then
// passed by reference into the components that need it; nothing reloads at
// runtime.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	JWTSecret        string // secret used to sign session JWTs
	SessionTTLMin    int    // session token time-to-live in minutes
	CookieExpiryDays int    // lifetime of the session cookie in days
	ResetTTLMin      int    // password-reset token time-to-live in minutes
	BcryptCost       int    // bcrypt cost for password hashing

	SMTPHost  string // outbound mail server host
	SMTPPort  string // outbound mail server port
	SMTPUser  string // SMTP username (empty disables AUTH)
	SMTPPass  string // SMTP password
	EmailFrom string // sender address for transactional mail

	AMQPURL string // RabbitMQ connection URL for the email queue
}

// Load reads configuration values from environment variables and returns a
// Config. A .env file in the working directory is merged in first so local
// development does not need exported variables. Required variables are
// enforced by must() and missing values cause the program to exit with a
// fatal log message.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Env:  must("APP_ENV"),  // environment (dev/test/prod)
		Port: must("APP_PORT"), // port to bind the HTTP server

		DBUser: must("DB_USER"),      // database user
		DBPass: os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost: must("DB_HOST"),      // database host
		DBPort: must("DB_PORT"),      // database port
		DBName: must("DB_NAME"),      // database name

		JWTSecret:        must("JWT_SECRET"),                    // secret used for signing session tokens
		SessionTTLMin:    mustInt("JWT_EXPIRES_IN_MIN"),         // TTL for session tokens in minutes
		CookieExpiryDays: envInt("JWT_COOKIE_EXPIRES_DAYS", 90), // cookie lifetime in days
		ResetTTLMin:      envInt("RESET_TOKEN_TTL_MIN", 10),     // password-reset token TTL in minutes
		BcryptCost:       mustInt("BCRYPT_COST"),                // bcrypt cost factor

		SMTPHost:  must("SMTP_HOST"),         // mail server host
		SMTPPort:  must("SMTP_PORT"),         // mail server port
		SMTPUser:  os.Getenv("SMTP_USER"),    // SMTP user (optional)
		SMTPPass:  os.Getenv("SMTP_PASS"),    // SMTP password (optional)
		EmailFrom: must("EMAIL_FROM"),        // transactional sender address
		AMQPURL:   os.Getenv("RABBITMQ_URL"), // broker URL (empty falls back to the local default)
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
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
