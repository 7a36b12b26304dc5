package middlewares

import (
	"github.com/geocoder89/bookrental/internal/apperr"
	"github.com/geocoder89/bookrental/internal/policy"
	"github.com/geocoder89/bookrental/internal/utils"
	"github.com/gin-gonic/gin"
)

const permissionDeniedMessage = "You do not have permission to perform that operation"

// RequirePermission admits the request when the caller's role may perform
// action. It must run after IsLoggedIn.
func (g *Guards) RequirePermission(action policy.Action) Guard {
	return Guard{
		Name: "require_" + string(action),
		Check: func(c *gin.Context) *apperr.Error {
			claims, ok := ClaimsFromContext(c)
			if !ok {
				return apperr.New(apperr.TokenMissing, "Access denied, Authentication token does not exist")
			}

			role := policy.RoleOf(claims.CurrentUser.Admin())
			if !policy.Can(role, action) {
				return apperr.New(apperr.PermissionDenied, permissionDeniedMessage)
			}

			return nil
		},
	}
}

// IsAdmin admits only tokens whose profile has isAdmin set to true.
func (g *Guards) IsAdmin() Guard {
	guard := g.RequirePermission(policy.ActionManageCatalog)
	guard.Name = "is_admin"
	return guard
}

// IsAccountOwner admits the request when the :userId path segment is the
// caller's own id, or when the caller is an admin. It must run after
// IsLoggedIn.
func (g *Guards) IsAccountOwner() Guard {
	return Guard{
		Name: "is_account_owner",
		Check: func(c *gin.Context) *apperr.Error {
			id, ok := utils.ParseID(c.Param("userId"))
			if !ok {
				return apperr.New(apperr.MalformedInput, "Invalid user id supplied!!!")
			}

			claims, ok := ClaimsFromContext(c)
			if !ok {
				return apperr.New(apperr.TokenMissing, "Access denied, Authentication token does not exist")
			}

			if claims.CurrentUser.Subject() != id && !claims.CurrentUser.Admin() {
				return apperr.New(apperr.PermissionDenied, permissionDeniedMessage)
			}

			return nil
		},
	}
}
