package auth

import "errors"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Permissions - разрешения по ролям. Владение записью проверяется в сервисах.
var Permissions = map[string][]string{
	RoleAdmin: {
		"listings:moderate",
		"news:write",
		"verification:review",
		"verification:read",
		"stats:platform",
		"files:private:read",
	},
	RoleUser: {
		"listings:write:self",
		"offers:write:self",
		"ads:write:self",
		"balance:write:self",
	},
}

// HasPermission проверяет есть ли у роли указанное разрешение
func HasPermission(role, permission string) bool {
	for _, p := range Permissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

func IsAdmin(role string) bool {
	return role == RoleAdmin
}

func ValidateRole(role string) error {
	switch role {
	case RoleAdmin, RoleUser:
		return nil
	default:
		return errors.New("invalid role")
	}
}
