package types

import (
	"os"
	"strings"
)

const ContextUserKey = "user"

const (
	RoleAdmin        = "Admin"
	RoleCollaborator = "Collaborator"
)

// Observed status labels. Statuses are free-form strings with no enforced
// transition graph; these are the values the UI and reports use.
const (
	StatusNew        = "New"
	StatusInProgress = "In Progress"
	StatusDone       = "Done"
)

const (
	EventActivityUpdated = "activity_updated"
	EventWildcard        = "*"
)

var (
	// Default allowed origins for development
	defaultOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	AllowedOrigins = initAllowedOrigins()
)

func initAllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		envOrigins := strings.Split(allowedOrigins, ",")
		for _, origin := range envOrigins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}
