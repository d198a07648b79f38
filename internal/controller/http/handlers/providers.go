package handlers

import (
	"net/http"

	"paygate/internal/domain/credentials"

	"github.com/gin-gonic/gin"
)

type ProviderStatusSource interface {
	ProviderStatus() []credentials.ProviderStatus
}

type ProvidersHandler struct {
	source ProviderStatusSource
}

func NewProvidersHandler(source ProviderStatusSource) *ProvidersHandler {
	return &ProvidersHandler{source: source}
}

// List reports which providers can take requests and, for the rest, which
// settings are missing or invalid. Values are never echoed.
func (h *ProvidersHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"providers": h.source.ProviderStatus()})
}
