package service

import (
	"fmt"
	"strings"

	"smart_toll/internal/domain"
)

// usStates is keyed by lower-case name with all whitespace removed.
var usStates = func() map[string]struct{} {
	names := []string{
		"Alabama", "Alaska", "Arizona", "Arkansas", "California", "Colorado", "Connecticut", "Delaware",
		"Florida", "Georgia", "Hawaii", "Idaho", "Illinois", "Indiana", "Iowa", "Kansas", "Kentucky",
		"Louisiana", "Maine", "Maryland", "Massachusetts", "Michigan", "Minnesota", "Mississippi",
		"Missouri", "Montana", "Nebraska", "Nevada", "New Hampshire", "New Jersey", "New Mexico",
		"New York", "North Carolina", "North Dakota", "Ohio", "Oklahoma", "Oregon", "Pennsylvania",
		"Rhode Island", "South Carolina", "South Dakota", "Tennessee", "Texas", "Utah", "Vermont",
		"Virginia", "Washington", "West Virginia", "Wisconsin", "Wyoming",
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[stateLookupKey(n)] = struct{}{}
	}
	return set
}()

func stateLookupKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// IsUSState reports whether s names one of the 50 US states, ignoring case and spacing.
func IsUSState(s string) bool {
	_, ok := usStates[stateLookupKey(s)]
	return ok
}

// FormatPlateKey builds the canonical "STATE::PLATE" key from the first two OCR tokens.
//
// When the first token is a state the second is the plate; otherwise the tokens are assumed
// to be in plate, state order. Spaces become dashes in whichever token is treated as the plate.
func FormatPlateKey(tokens []string) (string, error) {
	if len(tokens) < 2 {
		return "", fmt.Errorf("%w: got %d text token(s)", domain.ErrRecognition, len(tokens))
	}
	if IsUSState(tokens[0]) {
		return tokens[0] + "::" + strings.ReplaceAll(tokens[1], " ", "-"), nil
	}
	return tokens[1] + "::" + strings.ReplaceAll(tokens[0], " ", "-"), nil
}

// SplitPlateKey is the inverse used for display; dashes are stripped from the plate part.
func SplitPlateKey(key string) (state string, plate string, ok bool) {
	parts := strings.SplitN(key, "::", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(strings.ReplaceAll(parts[1], "-", "")), true
}
