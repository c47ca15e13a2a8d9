package controllers

import (
	"net/http"

	"github.com/bolajoy/bolajoy-backend/api/responses"
)

// PublicPing is an unauthenticated reachability probe.
func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"message": "pong"})
	}
}
