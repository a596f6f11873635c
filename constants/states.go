package constants

import (
	"strings"
)

// IndianStates is the fixed list scanned when recovering a missing state field.
// Order matters: the first state whose name occurs in the transcript wins.
var IndianStates = []string{
	"Maharashtra",
	"Karnataka",
	"Tamil Nadu",
	"Delhi",
	"Uttar Pradesh",
	"Gujarat",
	"Rajasthan",
	"Punjab",
	"Haryana",
	"Kerala",
	"West Bengal",
	"Andhra Pradesh",
	"Telangana",
	"Madhya Pradesh",
	"Bihar",
	"Odisha",
}

// MatchState scans text for the first known state name, case-insensitively.
func MatchState(text string) (string, bool) {
	lowered := strings.ToLower(text)
	for _, state := range IndianStates {
		if strings.Contains(lowered, strings.ToLower(state)) {
			return state, true
		}
	}
	return "", false
}
