package auth

import "github.com/vishesh2305/SafeTour/internal/model"

// Authorized reports whether the verified claims carry one of the required
// roles. A denial is terminal for the request; there is no downgrade path.
func Authorized(claims *Claims, required ...model.Role) bool {
	if claims == nil {
		return false
	}
	for _, role := range required {
		if claims.Role == role {
			return true
		}
	}
	return false
}

// Responder roles may list and resolve panic alerts.
func IsResponder(claims *Claims) bool {
	return Authorized(claims, model.RoleAdmin, model.RolePolice)
}
