package invoice

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var addressValidator = validator.New()

// ParseAddresses splits a free text recipient field on commas and semicolons
// and returns the syntactically valid addresses in input order. Invalid
// entries are dropped silently, duplicates are kept.
func ParseAddresses(raw string) []string {
	if raw == "" {
		return nil
	}

	tokens := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	})

	var valid []string
	for _, token := range tokens {
		address := strings.TrimSpace(token)
		if address == "" {
			continue
		}

		if err := addressValidator.Var(address, "email"); err != nil {
			continue
		}

		valid = append(valid, address)
	}

	return valid
}
