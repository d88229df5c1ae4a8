// Package validation содержит функции валидации входных данных.
package validation

import "regexp"

var (
	loginRe   = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)
	channelRe = regexp.MustCompile(`^[a-z0-9_]{3,32}$`)
)

// IsValidLogin проверяет допустимость логина пользователя.
func IsValidLogin(login string) bool {
	return loginRe.MatchString(login)
}

// IsValidChannelName проверяет допустимость имени канала.
func IsValidChannelName(name string) bool {
	return channelRe.MatchString(name)
}
