package v1

import (
	"net/http"

	"go-profile-backend/internal/delivery/http/response"
	"go-profile-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	accountUC domain.AccountUsecase
}

// NewAuthHandler registers account routes. Accounts are provisioned by the
// auth middleware, so both routes only read the result back.
func NewAuthHandler(protected *gin.RouterGroup, accountUC domain.AccountUsecase) {
	handler := &AuthHandler{accountUC: accountUC}

	protectedAuth := protected.Group("/auth")
	{
		protectedAuth.POST("/sync", handler.SyncAccount)
		protectedAuth.GET("/me", handler.Me)
	}
}

// SyncAccount godoc
// @Summary      Sync account
// @Description  Provision the local account and seed the profile from the verified token
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.AccountSummary}
// @Failure      401  {object}  response.Response
// @Router       /auth/sync [post]
// @Security     BearerAuth
func (h *AuthHandler) SyncAccount(c *gin.Context) {
	account, err := h.accountUC.GetAccount(c, c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Account synced successfully", account.Summary())
}

// Me godoc
// @Summary      Current account
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.AccountSummary}
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
// @Security     BearerAuth
func (h *AuthHandler) Me(c *gin.Context) {
	account, err := h.accountUC.GetAccount(c, c.GetString(string(domain.KeyUserID)))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Account retrieved successfully", account.Summary())
}
