package domain

// User is the identity record returned by the auth service. It is only
// trusted after the bearer token it came with has been validated.
type User struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterDetails struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

// AuthResult is the response of a successful login or register call.
// ExpiresAt is an ISO-8601 timestamp and may be empty.
type AuthResult struct {
	AccessToken string `json:"accessToken"`
	ExpiresAt   string `json:"expiresAt"`
	User        User   `json:"user"`
}
