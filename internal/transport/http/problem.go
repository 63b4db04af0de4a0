package transporthttp

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/likewatch-dev/likewatch/internal/domain"
)

// Problem is an RFC 7807 error body.
type Problem struct {
	Title  string `json:"title,omitempty"`
	Status int    `json:"status,omitempty"`
	Detail string `json:"detail,omitempty"`
}

func writeProblem(c *gin.Context, status int, title, detail string) {
	c.Header("Content-Type", "application/problem+json")
	c.AbortWithStatusJSON(status, Problem{Title: title, Status: status, Detail: detail})
}

// writeError maps domain error kinds onto HTTP statuses. Store failures are
// propagated as 503 so the caller owns retry/backoff.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(c, http.StatusNotFound, "not found", err.Error())
	case errors.Is(err, domain.ErrInvalidTimeFormat):
		writeProblem(c, http.StatusBadRequest, "invalid time format", err.Error())
	case errors.Is(err, domain.ErrStoreUnavailable):
		writeProblem(c, http.StatusServiceUnavailable, "store unavailable", err.Error())
	case errors.Is(err, domain.ErrConfiguration):
		writeProblem(c, http.StatusInternalServerError, "configuration error", err.Error())
	default:
		writeProblem(c, http.StatusInternalServerError, "internal error", err.Error())
	}
}
