package domain

import "time"

// Role is the admin account role. Roles are strictly ordered; a higher
// level implies every capability of the levels below it.
type Role string

const (
	RoleViewer  Role = "viewer"
	RoleScanner Role = "scanner"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

var roleLevels = map[Role]int{
	RoleViewer:  1,
	RoleScanner: 2,
	RoleManager: 3,
	RoleAdmin:   4,
}

func (r Role) Level() int {
	return roleLevels[r]
}

func (r Role) AtLeast(min Role) bool {
	return r.Level() >= min.Level()
}

func ValidRole(s string) bool {
	_, ok := roleLevels[Role(s)]
	return ok
}

type User struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
