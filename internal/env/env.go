// Package env resolves optional environment defaults, with support for a
// local .env file. Flags always win over the environment; the environment
// wins over built-in defaults.
package env

import (
	"os"

	"github.com/joho/godotenv"
)

var fileEnv map[string]string

// Load reads a .env file from the working directory if one exists. A
// missing file is not an error; the process environment still applies.
func Load() {
	if vals, err := godotenv.Read(".env"); err == nil {
		fileEnv = vals
	}
}

// Get returns the value for key from the loaded .env file, then from the
// process environment, then the default.
func Get(key, def string) string {
	if val, ok := fileEnv[key]; ok {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}
