package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/account-rest-service/pkg/response"
)

type SystemHandler struct {
	Name    string
	Version string
}

func NewSystemHandler(name, version string) *SystemHandler {
	return &SystemHandler{Name: name, Version: version}
}

// Index reports the service identity.
func (h *SystemHandler) Index(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"name": h.Name, "version": h.Version})
}

func (h *SystemHandler) Health(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"status": "healthy"})
}
