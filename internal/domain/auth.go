package domain

// User is the public identity returned to the dashboard after login.
type User struct {
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username" validate:"required,min=2,max=64"`
	Password string `json:"password" validate:"required,min=4,max=128"`
}

// LoginResponse mirrors the dashboard's expected login payload.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
	ExpiresIn   int64  `json:"expires_in"`
}

// HasPermission reports whether the user carries the named permission.
func (u User) HasPermission(perm string) bool {
	for _, p := range u.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
