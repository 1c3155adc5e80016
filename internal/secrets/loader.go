package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrMissing is returned when a secret has no usable value.
var ErrMissing = errors.New("secret is not configured")

// Source describes where a secret value comes from.
type Source struct {
	// Name is used in error messages, e.g. "airtable api key".
	Name string
	// Value is the inline value, usually bound from the environment.
	Value string
	// File points to a file holding the secret. It wins over Value when set.
	File string
}

// Load resolves the secret described by src and returns it trimmed.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	value := src.Value
	if file := strings.TrimSpace(src.File); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}

		value = string(data)
		if strings.TrimSpace(value) == "" {
			return "", fmt.Errorf("%s file %q is empty: %w", name, file, ErrMissing)
		}
	}

	secret := strings.TrimSpace(value)
	if secret == "" {
		return "", fmt.Errorf("%s: %w", name, ErrMissing)
	}

	return secret, nil
}
