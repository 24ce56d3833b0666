package env

import "os"

// Get reads an environment variable, substituting fallback when the
// variable is unset or blank.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
