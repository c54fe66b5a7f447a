package middleware

import (
	"log"
	"net/http"

	"fieldform/backend/models"
	"fieldform/backend/store"
)

// RequireAdmin ensures the authenticated user has the admin role.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := GetUserIDFromContext(r)
			if userID == "" {
				http.Error(w, "Unauthorized: No user ID found", http.StatusUnauthorized)
				return
			}

			user, err := store.GetUserByID(userID)
			if err != nil {
				log.Printf("Error loading user %s for role check: %v", userID, err)
				http.Error(w, "Failed to check user role", http.StatusInternalServerError)
				return
			}
			if user == nil || user.Role != models.RoleAdmin {
				http.Error(w, "Forbidden: Admin role required", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CheckReportPermission reports whether the user appears in the given
// permission set of the report, or is an admin.
func CheckReportPermission(userID string, set []string) bool {
	if models.Allows(set, userID) {
		return true
	}

	user, err := store.GetUserByID(userID)
	if err != nil {
		log.Printf("Error checking admin override for user %s: %v", userID, err)
		return false
	}
	return user != nil && user.Role == models.RoleAdmin
}
