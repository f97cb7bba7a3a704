package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	projectservice "github.com/timberbase/timberbase/internal/project/service"
)

func (s *Server) HandleListProjects(c *gin.Context) {
	projects, err := s.projectSvc.List(c.Request.Context(), companyID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (s *Server) HandleGetProject(c *gin.Context) {
	id, err := parseProjectID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	project, err := s.projectSvc.Get(c.Request.Context(), companyID(c), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (s *Server) HandleCreateProject(c *gin.Context) {
	var req projectservice.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	project, err := s.projectSvc.Create(c.Request.Context(), companyID(c), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

func (s *Server) HandleUpdateProject(c *gin.Context) {
	id, err := parseProjectID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req projectservice.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	project, err := s.projectSvc.Update(c.Request.Context(), companyID(c), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (s *Server) HandleDeleteProject(c *gin.Context) {
	id, err := parseProjectID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.projectSvc.Delete(c.Request.Context(), companyID(c), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseProjectID(c *gin.Context) (snowflake.ID, error) {
	raw := strings.TrimSpace(c.Param("projectID"))
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, ErrInvalidRequest
	}
	return id, nil
}
