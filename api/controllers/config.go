package controllers

import (
	"net/http"

	"github.com/vegobolt/vegobolt-backend/api/responses"
)

// ConfigBackendURL exposes the base URL the mobile app should talk to. The
// app fetches it at startup so deployments can move without a client update.
func ConfigBackendURL(backendURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, "Backend URL retrieved", map[string]string{"backend_url": backendURL})
	}
}
