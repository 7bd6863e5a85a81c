package items

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	nameMinLen = 2
	nameMaxLen = 150
	skuMinLen  = 2
	skuMaxLen  = 50
	unitMaxLen = 20
)

// Length bounds count characters, not bytes, so multibyte names validate
// the same as ASCII ones.
func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n < nameMinLen || n > nameMaxLen {
		return "", fmt.Errorf("%w: name must be %d-%d characters", ErrInvalidInput, nameMinLen, nameMaxLen)
	}
	return name, nil
}

func normalizeSKU(sku string) (string, error) {
	sku = strings.TrimSpace(sku)
	if n := utf8.RuneCountInString(sku); n < skuMinLen || n > skuMaxLen {
		return "", fmt.Errorf("%w: sku must be %d-%d characters", ErrInvalidInput, skuMinLen, skuMaxLen)
	}
	return sku, nil
}

// normalizeUnit trims the unit; an empty string means the item has no unit.
func normalizeUnit(unit string) (string, error) {
	unit = strings.TrimSpace(unit)
	if utf8.RuneCountInString(unit) > unitMaxLen {
		return "", fmt.Errorf("%w: unit must be at most %d characters", ErrInvalidInput, unitMaxLen)
	}
	return unit, nil
}

func validateThreshold(threshold int) error {
	if threshold < 0 {
		return fmt.Errorf("%w: reorder threshold cannot be negative", ErrInvalidInput)
	}
	return nil
}
