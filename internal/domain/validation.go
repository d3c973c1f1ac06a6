package domain

import "unicode/utf8"

const (
	minUsernameLen = 4
	minPasswordLen = 4
)

func ValidUsername(s string) bool {
	return utf8.RuneCountInString(s) >= minUsernameLen
}

func ValidPassword(s string) bool {
	return utf8.RuneCountInString(s) >= minPasswordLen
}
