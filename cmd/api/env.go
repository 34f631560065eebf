package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// loadDotEnv loads variables from DOTENV_FILE, or .env when unset. A missing
// file is ignored; variables already in the process environment win.
func loadDotEnv() error {
	path := os.Getenv("DOTENV_FILE")
	if path == "" {
		path = ".env"
	}

	err := godotenv.Load(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("load %s: %w", path, err)
}
