package http

import (
	"net/http"

	"github.com/aura-clinic/aura/pkg/httpx"
	"github.com/aura-clinic/aura/pkg/jwtx"
)

// JWKSHandler exposes the JSON Web Key Set so other AURA services can verify
// access tokens locally.
func JWKSHandler(keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, keys.PublicJWKS())
	}
}
