package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	householddomain "github.com/opengov-ph/barangay/internal/household/domain"
	"github.com/opengov-ph/barangay/pkg/db/pagination"
)

type listHouseholdsQuery struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size"`
	Status    string `form:"status"`
	Purok     string `form:"purok"`
}

func (s *Server) RegisterHousehold(c *gin.Context) {
	var req householddomain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	created, err := s.householdSvc.Register(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id := created.ID.String()
	_ = s.auditSvc.AuditLog(c.Request.Context(), nil, "household.register", "household", &id, map[string]any{
		"purok": created.Purok,
	})

	c.JSON(http.StatusCreated, created)
}

func (s *Server) ListHouseholds(c *gin.Context) {
	var query listHouseholdsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.householdSvc.List(c.Request.Context(), householddomain.ListRequest{
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(query.PageToken),
			PageSize:  query.PageSize,
		},
		Status: strings.TrimSpace(query.Status),
		Purok:  strings.TrimSpace(query.Purok),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetHouseholdByID(c *gin.Context) {
	found, err := s.householdSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (s *Server) UpdateHousehold(c *gin.Context) {
	var body householddomain.RegisterRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	updated, err := s.householdSvc.Update(c.Request.Context(), householddomain.UpdateRequest{
		ID:              c.Param("id"),
		RegisterRequest: body,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id := updated.ID.String()
	_ = s.auditSvc.AuditLog(c.Request.Context(), s.actorID(c), "household.update", "household", &id, nil)

	c.JSON(http.StatusOK, updated)
}

func (s *Server) SetHouseholdStatus(c *gin.Context) {
	var body setStatusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	updated, err := s.householdSvc.SetStatus(c.Request.Context(), c.Param("id"), householddomain.Status(body.Status))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id := updated.ID.String()
	_ = s.auditSvc.AuditLog(c.Request.Context(), s.actorID(c), "household.set_status", "household", &id, map[string]any{
		"status": updated.Status,
	})

	c.JSON(http.StatusOK, updated)
}

func (s *Server) DeleteHousehold(c *gin.Context) {
	id := c.Param("id")
	if err := s.householdSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	_ = s.auditSvc.AuditLog(c.Request.Context(), s.actorID(c), "household.delete", "household", &id, nil)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ListHouseholdBackups(c *gin.Context) {
	entries, err := s.householdSvc.ListBackups(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"backups": entries})
}

func (s *Server) RestoreHouseholds(c *gin.Context) {
	var body restoreBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.householdSvc.Restore(c.Request.Context(), body.IDs)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	_ = s.auditSvc.AuditLog(c.Request.Context(), s.actorID(c), "household.restore", "household", nil, map[string]any{
		"requested": len(body.IDs),
		"restored":  result.Restored,
	})

	c.JSON(http.StatusOK, result)
}
