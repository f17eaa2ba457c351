package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RespondJSONWithETag serves owner-scoped reads with a strong ETag so the
// dashboard can revalidate cheaply. Responses depend on the bearer token,
// so shared caches must not reuse them.
func RespondJSONWithETag(ctx *gin.Context, status int, payload interface{}) {
	ctx.Header("Cache-Control", "private, no-cache")
	ctx.Header("Vary", "Authorization")

	etag, ok := payloadETag(payload)
	if !ok {
		ctx.JSON(status, payload)
		return
	}
	ctx.Header("ETag", etag)

	if matchesAny(ctx.GetHeader("If-None-Match"), etag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.JSON(status, payload)
}

func payloadETag(payload interface{}) (string, bool) {
	h := sha256.New()
	if err := json.NewEncoder(h).Encode(payload); err != nil {
		return "", false
	}

	return `"` + hex.EncodeToString(h.Sum(nil)[:16]) + `"`, true
}

// matchesAny implements the If-None-Match list comparison (weak match).
func matchesAny(header, etag string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}

	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == etag {
			return true
		}
	}

	return false
}
