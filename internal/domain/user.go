package domain

// User is the authenticated caller. Email is required to check out; name
// and phone are best-effort signup metadata and may be empty, the provider
// accepts blank strings.
type User struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Phone     string
}

func (u User) Authenticated() bool {
	return u.ID != "" && u.Email != ""
}
