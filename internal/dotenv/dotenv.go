package dotenv

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// Load reads the given .env files into the environment.
// Variables that are already set are left untouched.
func Load(filenames ...string) error {
	return godotenv.Load(filenames...)
}

// LoadIfPresent behaves like Load but skips files that don't exist
func LoadIfPresent(filenames ...string) error {
	for _, name := range filenames {
		if err := godotenv.Load(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// LoadDefault loads .env file from the current directory
func LoadDefault() error {
	return Load(".env")
}
