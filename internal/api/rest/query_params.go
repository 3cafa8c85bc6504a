package rest

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/remixhub/registry/internal/designs"
)

// ListDesignsQueryParams holds query parameters for GET /designs
type ListDesignsQueryParams struct {
	Owner  *string `form:"owner"`
	Limit  int     `form:"limit,default=20"`
	Offset int     `form:"offset,default=0"`
}

// ParseListDesignsQuery parses query parameters for GET /designs
func ParseListDesignsQuery(c *gin.Context) (*ListDesignsQueryParams, error) {
	var params ListDesignsQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}

	if params.Limit > designs.MaxLimit {
		params.Limit = designs.MaxLimit
	}

	return &params, nil
}

// Validate validates the query parameters
func (p *ListDesignsQueryParams) Validate() error {
	if p.Limit < 1 {
		return fmt.Errorf("limit must be at least 1")
	}
	if p.Offset < 0 {
		return fmt.Errorf("offset must not be negative")
	}
	return nil
}
