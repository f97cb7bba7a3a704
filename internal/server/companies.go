package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

func (s *Server) HandleGetCompany(c *gin.Context) {
	company, err := s.companySvc.Get(c.Request.Context(), companyID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

// HandleDowngradeCompany is the administrative reset to the free plan.
func (s *Server) HandleDowngradeCompany(c *gin.Context) {
	raw := strings.TrimSpace(c.Param("companyID"))
	id, err := snowflake.ParseString(raw)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.companySvc.Downgrade(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
