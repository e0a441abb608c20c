package config

import (
	"os"
	"strings"
)

// GetSecret retrieves a secret with multiple fallback sources.
// Priority:
//  1. Direct environment variable (e.g., DB_PASSWORD)
//  2. File path from the _FILE environment variable (e.g., DB_PASSWORD_FILE)
//  3. Default value
//
// File-based secrets let container orchestrators mount credentials, e.g.
// DATABASE_URL_FILE=/run/secrets/database_url.
func GetSecret(envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}

	if filePath := os.Getenv(envVar + "_FILE"); filePath != "" {
		if data, err := os.ReadFile(filePath); err == nil {
			return strings.TrimSpace(string(data))
		}
	}

	return defaultValue
}
