// Package config provides functionality for managing configuration options
// for the application using command-line flags, a JSON config file,
// a .env file and environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

// DefaultSecretKey is the development signing key. It must be replaced in
// any deployment; the server logs a warning when it is in use.
const DefaultSecretKey = "dev"

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"port"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `json:"database_dsn"`

	// SecretKey signs session and flash cookies.
	SecretKey string `json:"secret_key"`

	// SecretKeyFallbacks are previous secret keys still accepted when
	// verifying cookies.
	SecretKeyFallbacks []string `json:"secret_key_fallbacks"`

	// SecureCookie marks cookies HTTPS-only.
	SecureCookie bool `json:"secure_cookie"`

	// SessionMaxAge is the session cookie lifetime. The config file spells
	// it as a duration string ("session_max_age": "12h").
	SessionMaxAge time.Duration `json:"-"`

	// BcryptCost is the password hashing work factor.
	BcryptCost int `json:"bcrypt_cost"`

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string `json:"tls_cert_file"`
	TLSKeyFile  string `json:"tls_key_file"`

	// LogLevel is the minimum zap level.
	LogLevel string `json:"log_level"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// Parse parses the command-line flags, an optional .env file and environment
// variables. It returns a pointer to the Options struct containing the parsed
// configuration values and exits the process on invalid input.
func Parse() *Options {
	dotenv, err := readDotEnv(".env")
	if err != nil {
		log.Fatalf("error while reading .env: %v", err)
	}

	getenv := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return dotenv[key]
	}

	options, err := Load(flag.CommandLine, os.Args[1:], getenv)
	if err != nil {
		log.Fatalf("%v", err)
	}
	return options
}

// Load registers the application flags, parses args, applies the JSON config file
// and finally the environment read through getenv.
// Precedence, lowest first: defaults, flags, config file, environment.
func Load(flags *flag.FlagSet, args []string, getenv func(string) string) (*Options, error) {
	options := &Options{}

	flags.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	flags.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flags.StringVar(&options.SecretKey, "k", DefaultSecretKey, "session signing key")
	flags.BoolVar(&options.SecureCookie, "secure-cookie", false, "send cookies over HTTPS only")
	flags.DurationVar(&options.SessionMaxAge, "session-max-age", 31*24*time.Hour, "session cookie lifetime")
	flags.IntVar(&options.BcryptCost, "bcrypt-cost", 0, "bcrypt cost (0 uses the library default)")
	flags.StringVar(&options.TLSCertFile, "tls-cert", "", "TLS certificate file")
	flags.StringVar(&options.TLSKeyFile, "tls-key", "", "TLS key file")
	flags.StringVar(&options.LogLevel, "log-level", "info", "log level")
	flags.StringVar(&options.Config, "config", "config.json", "path to config file")
	flags.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if configPath := getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				return nil, fmt.Errorf("error while reading config file: %w", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				return nil, fmt.Errorf("error while parsing config file: %w", err)
			}
			if err := applyFileDurations(data, options); err != nil {
				return nil, err
			}
		}
	}

	if err := applyEnv(options, getenv); err != nil {
		return nil, err
	}
	if _, err := zapcore.ParseLevel(strings.ToLower(options.LogLevel)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	return options, nil
}

// fileDurations holds the config file fields written as duration strings.
type fileDurations struct {
	SessionMaxAge string `json:"session_max_age"`
}

func applyFileDurations(data []byte, options *Options) error {
	var d fileDurations
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	if d.SessionMaxAge != "" {
		v, err := time.ParseDuration(d.SessionMaxAge)
		if err != nil {
			return fmt.Errorf("session_max_age: %w", err)
		}
		options.SessionMaxAge = v
	}
	return nil
}

func applyEnv(options *Options, getenv func(string) string) error {
	if serverAddress := getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Port = serverAddress
	}
	if dsn := getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	if key := getenv("SECRET_KEY"); key != "" {
		options.SecretKey = key
	}
	if fallbacks := getenv("SECRET_KEY_FALLBACKS"); fallbacks != "" {
		options.SecretKeyFallbacks = splitList(fallbacks)
	}
	if secure := getenv("SESSION_COOKIE_SECURE"); secure != "" {
		v, err := strconv.ParseBool(secure)
		if err != nil {
			return fmt.Errorf("SESSION_COOKIE_SECURE: %w", err)
		}
		options.SecureCookie = v
	}
	if maxAge := getenv("SESSION_MAX_AGE"); maxAge != "" {
		v, err := time.ParseDuration(maxAge)
		if err != nil {
			return fmt.Errorf("SESSION_MAX_AGE: %w", err)
		}
		options.SessionMaxAge = v
	}
	if cost := getenv("BCRYPT_COST"); cost != "" {
		v, err := strconv.Atoi(cost)
		if err != nil {
			return fmt.Errorf("BCRYPT_COST: %w", err)
		}
		options.BcryptCost = v
	}
	if cert := getenv("TLS_CERT_FILE"); cert != "" {
		options.TLSCertFile = cert
	}
	if key := getenv("TLS_KEY_FILE"); key != "" {
		options.TLSKeyFile = key
	}
	if level := getenv("LOG_LEVEL"); level != "" {
		options.LogLevel = level
	}
	return nil
}

// Secrets returns the signing key followed by the fallbacks.
func (o *Options) Secrets() []string {
	return append([]string{o.SecretKey}, o.SecretKeyFallbacks...)
}

// TLSEnabled reports whether both TLS files are configured.
func (o *Options) TLSEnabled() bool {
	return o.TLSCertFile != "" && o.TLSKeyFile != ""
}

// readDotEnv returns the variables defined in path, or nothing if the file
// does not exist. Variables are not exported into the process environment.
func readDotEnv(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	return values, err
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
