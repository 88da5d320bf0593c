package initializers

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// EnvFile is read by LoadEnv when present.
var EnvFile = ".env"

// LoadEnv loads EnvFile into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadEnv() error {
	err := godotenv.Load(EnvFile)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", EnvFile, err)
}
