package google

import (
	"slices"
	"strings"
)

// User is the account the adapter acts for.
type User struct {
	ID     string
	Name   string
	Emails []string
}

// NewUser returns a user known by the given email addresses.
func NewUser(name string, emails ...string) *User {
	return &User{Name: name, Emails: emails}
}

// HasEmail reports whether email is one of the user's addresses, ignoring case.
func (u *User) HasEmail(email string) bool {
	return slices.ContainsFunc(u.Emails, func(e string) bool {
		return strings.EqualFold(e, email)
	})
}

// Email returns the first address of the user, or "".
func (u *User) Email() string {
	if len(u.Emails) == 0 {
		return ""
	}
	return u.Emails[0]
}
