package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/timberbase/timberbase/internal/entitlement"
)

const (
	// HeaderCompany identifies the tenant for every scoped route. Session
	// authentication is handled upstream of this service.
	HeaderCompany = "X-Company-ID"

	contextCompanyIDKey = "company_id"
)

// CompanyContext resolves the tenant id from the request header.
func (s *Server) CompanyContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderCompany))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		id, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Set(contextCompanyIDKey, id)
		c.Next()
	}
}

func companyID(c *gin.Context) snowflake.ID {
	value, ok := c.Get(contextCompanyIDKey)
	if !ok {
		return 0
	}
	id, _ := value.(snowflake.ID)
	return id
}

// RequirePremium gates mutating routes on the tenant's current subscription
// state. It re-reads that state on every call: subscription status changes
// asynchronously through the webhook at any time, so nothing is cached beyond
// the request.
func (s *Server) RequirePremium() gin.HandlerFunc {
	return func(c *gin.Context) {
		company, err := s.companySvc.Get(c.Request.Context(), companyID(c))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if err := entitlement.Check(company.Plan, company.SubscriptionStatus); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}
