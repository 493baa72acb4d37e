// internal/api/handlers/auth_handler.go
package handlers

import (
	"net/http"

	"github.com/EduardoCSampaio/CentralBancaria/internal/api/responses"
	"github.com/EduardoCSampaio/CentralBancaria/internal/core/auth"
	"github.com/gin-gonic/gin"
)

// AuthHandler lida com as requisições de autenticação.
type AuthHandler struct {
	service auth.Service
}

// NewAuthHandler cria um novo handler de autenticação.
func NewAuthHandler(service auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login valida as credenciais e devolve o token JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Error(c, http.StatusBadRequest, "Credenciais não fornecidas")
		return
	}

	token, err := h.service.Login(req.Username, req.Password)
	if err != nil {
		responses.Error(c, http.StatusUnauthorized, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
