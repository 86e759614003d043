package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"github.com/opengov-ph/barangay/internal/providers/pdf"
	requestdomain "github.com/opengov-ph/barangay/internal/request/domain"
	"github.com/opengov-ph/barangay/pkg/db/pagination"
)

type listRequestsQuery struct {
	PageToken       string `form:"page_token"`
	PageSize        int    `form:"page_size"`
	Status          string `form:"status"`
	CertificateType string `form:"certificate_type"`
}

type setStatusBody struct {
	Status string `json:"status"`
}

type restoreBody struct {
	IDs []string `json:"ids"`
}

func (s *Server) SubmitRequest(c *gin.Context) {
	var req requestdomain.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	created, err := s.requestSvc.Submit(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id := created.ID.String()
	_ = s.auditSvc.AuditLog(c.Request.Context(), nil, "request.submit", "request", &id, map[string]any{
		"certificate_type": created.CertificateType,
	})

	c.JSON(http.StatusCreated, created)
}

func (s *Server) ListRequests(c *gin.Context) {
	var query listRequestsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.requestSvc.List(c.Request.Context(), requestdomain.ListRequest{
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(query.PageToken),
			PageSize:  query.PageSize,
		},
		Status:          strings.TrimSpace(query.Status),
		CertificateType: strings.TrimSpace(query.CertificateType),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetRequestByID(c *gin.Context) {
	found, err := s.requestSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (s *Server) UpdateRequest(c *gin.Context) {
	var body requestdomain.SubmitRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	updated, err := s.requestSvc.Update(c.Request.Context(), requestdomain.UpdateRequest{
		ID:            c.Param("id"),
		SubmitRequest: body,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id := updated.ID.String()
	_ = s.auditSvc.AuditLog(c.Request.Context(), s.actorID(c), "request.update", "request", &id, nil)

	c.JSON(http.StatusOK, updated)
}

func (s *Server) SetRequestStatus(c *gin.Context) {
	var body setStatusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	updated, err := s.requestSvc.SetStatus(c.Request.Context(), c.Param("id"), requestdomain.Status(body.Status))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id := updated.ID.String()
	_ = s.auditSvc.AuditLog(c.Request.Context(), s.actorID(c), "request.set_status", "request", &id, map[string]any{
		"status": updated.Status,
	})

	c.JSON(http.StatusOK, updated)
}

func (s *Server) DeleteRequest(c *gin.Context) {
	id := c.Param("id")
	if err := s.requestSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	_ = s.auditSvc.AuditLog(c.Request.Context(), s.actorID(c), "request.delete", "request", &id, nil)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ListRequestBackups(c *gin.Context) {
	entries, err := s.requestSvc.ListBackups(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"backups": entries})
}

func (s *Server) RestoreRequests(c *gin.Context) {
	var body restoreBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.requestSvc.Restore(c.Request.Context(), body.IDs)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	_ = s.auditSvc.AuditLog(c.Request.Context(), s.actorID(c), "request.restore", "request", nil, map[string]any{
		"requested": len(body.IDs),
		"restored":  result.Restored,
	})

	c.JSON(http.StatusOK, result)
}

// GenerateCertificate renders the certificate PDF for an approved request and
// marks the request ready for pickup.
func (s *Server) GenerateCertificate(c *gin.Context) {
	found, err := s.requestSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if found.Status != requestdomain.StatusApproved && found.Status != requestdomain.StatusForPickup {
		AbortWithError(c, newValidationError("status", "not_approved", "request must be approved first"))
		return
	}

	fullName := strings.TrimSpace(strings.Join([]string{
		found.FirstName, found.MiddleName, found.LastName, found.Suffix,
	}, " "))
	fullName = strings.Join(strings.Fields(fullName), " ")

	reader, err := s.pdfs.GenerateCertificate(c.Request.Context(), pdf.CertificateData{
		BarangayName:    s.cfg.BarangayName,
		Municipality:    s.cfg.Municipality,
		Province:        s.cfg.Province,
		Captain:         s.cfg.Captain,
		CertificateType: found.CertificateType,
		FullName:        fullName,
		Address:         found.Address,
		Birthday:        found.Birthday,
		Purpose:         found.Purpose,
		IssuedAt:        time.Now().Format("January 2, 2006"),
		ControlNumber:   found.ID.String(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if found.Status == requestdomain.StatusApproved {
		if _, err := s.requestSvc.SetStatus(c.Request.Context(), found.ID.String(), requestdomain.StatusForPickup); err != nil {
			AbortWithError(c, err)
			return
		}
	}

	id := found.ID.String()
	_ = s.auditSvc.AuditLog(c.Request.Context(), s.actorID(c), "request.generate_certificate", "request", &id, map[string]any{
		"certificate_type": found.CertificateType,
	})

	filename := fmt.Sprintf("%s-%s.pdf", found.CertificateType, slug.Make(fullName))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}
