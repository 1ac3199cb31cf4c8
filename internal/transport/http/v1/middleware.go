package v1

import (
	"github.com/labstack/echo/v4"

	"github.com/chat2geo/chat2geo/internal/domain"
)

const userContextKey = "user"

// RequireUser resolves the Authorization bearer token and stores the user
// on the request context. Requests without a valid token get a 401 with
// the standard error envelope.
func (h *Handler) RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := h.auth.Resolve(c.Request().Context(), c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return httpError(c, err)
		}
		c.Set(userContextKey, user)
		return next(c)
	}
}

// currentUser returns the authenticated user stored by RequireUser.
func currentUser(c echo.Context) *domain.User {
	user, _ := c.Get(userContextKey).(*domain.User)
	return user
}
