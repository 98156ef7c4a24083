package handlers

import (
	"net/http"
	"runtime"
)

// Build metadata, set with -ldflags "-X github.com/benvon/smart-planner/internal/handlers.Version=..."
var (
	Version = "dev"
	Commit  = "unknown"
)

// VersionInfo is the body of GET /version
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
}

// GetVersion reports build metadata
func GetVersion(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, VersionInfo{
		Version:   Version,
		Commit:    Commit,
		GoVersion: runtime.Version(),
	})
}
