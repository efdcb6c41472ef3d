package models

// User represents a user record held by the identity provider.
type User struct {
	ID            string       `json:"id,omitempty"`
	Username      string       `json:"username"`
	FirstName     string       `json:"firstName,omitempty"`
	LastName      string       `json:"lastName,omitempty"`
	Email         string       `json:"email,omitempty"`
	EmailVerified bool         `json:"emailVerified"`
	Enabled       bool         `json:"enabled"`
	Credentials   []Credential `json:"credentials,omitempty"`
}

// Credential is a credential attached to a provider user on creation.
type Credential struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Temporary bool   `json:"temporary"`
}

// Role represents a realm role.
type Role struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Composite bool   `json:"composite"`
}

// Group represents a group in the realm.
type Group struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path,omitempty"`
}
