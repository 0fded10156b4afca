package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads filenames (default ".env") into the environment without
// overriding variables already set. A missing file is not an error.
func LoadDotEnv(filenames ...string) error {
	if err := godotenv.Load(filenames...); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
