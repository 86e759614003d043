package server

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	eventdomain "github.com/opengov-ph/barangay/internal/event/domain"
	"github.com/opengov-ph/barangay/pkg/db/pagination"
)

type listEventsQuery struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size"`
}

func (s *Server) ListPublicEvents(c *gin.Context) {
	s.ListEvents(c)
}

func (s *Server) GetPublicEvent(c *gin.Context) {
	s.GetEventByID(c)
}

func (s *Server) ListEvents(c *gin.Context) {
	var query listEventsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.eventSvc.List(c.Request.Context(), eventdomain.ListEventRequest{
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(query.PageToken),
			PageSize:  query.PageSize,
		},
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetEventByID(c *gin.Context) {
	found, err := s.eventSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (s *Server) CreateEvent(c *gin.Context) {
	var req eventdomain.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	created, err := s.eventSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id := created.ID.String()
	_ = s.auditSvc.AuditLog(c.Request.Context(), s.actorID(c), "event.create", "event", &id, map[string]any{
		"title": created.Title,
	})

	c.JSON(http.StatusCreated, created)
}

func (s *Server) UpdateEvent(c *gin.Context) {
	var body eventdomain.CreateEventRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	updated, err := s.eventSvc.Update(c.Request.Context(), eventdomain.UpdateEventRequest{
		ID:                 c.Param("id"),
		CreateEventRequest: body,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id := updated.ID.String()
	_ = s.auditSvc.AuditLog(c.Request.Context(), s.actorID(c), "event.update", "event", &id, nil)

	c.JSON(http.StatusOK, updated)
}

func (s *Server) DeleteEvent(c *gin.Context) {
	id := c.Param("id")
	if err := s.eventSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	_ = s.auditSvc.AuditLog(c.Request.Context(), s.actorID(c), "event.delete", "event", &id, nil)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// UploadEventImage stores the uploaded image and attaches its URL to the
// event through the normal update path, so the change is shadowed like any
// other edit.
func (s *Server) UploadEventImage(c *gin.Context) {
	found, err := s.eventSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		AbortWithError(c, newValidationError("image", "required", "image file is required"))
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
	default:
		AbortWithError(c, newValidationError("image", "unsupported_type", "unsupported image type"))
		return
	}

	file, err := header.Open()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer file.Close()

	key := fmt.Sprintf("events/%s/%s%s", found.ID.String(), s.genID.Generate().String(), ext)
	url, err := s.storage.Put(c.Request.Context(), key, file)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	updated, err := s.eventSvc.Update(c.Request.Context(), eventdomain.UpdateEventRequest{
		ID: found.ID.String(),
		CreateEventRequest: eventdomain.CreateEventRequest{
			Title:       found.Title,
			Description: found.Description,
			Venue:       found.Venue,
			StartsAt:    found.StartsAt,
			EndsAt:      found.EndsAt,
			ImageURL:    url,
		},
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id := updated.ID.String()
	_ = s.auditSvc.AuditLog(c.Request.Context(), s.actorID(c), "event.upload_image", "event", &id, nil)

	c.JSON(http.StatusOK, updated)
}

func (s *Server) ListEventBackups(c *gin.Context) {
	entries, err := s.eventSvc.ListBackups(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"backups": entries})
}

func (s *Server) RestoreEvents(c *gin.Context) {
	var body restoreBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.eventSvc.Restore(c.Request.Context(), body.IDs)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	_ = s.auditSvc.AuditLog(c.Request.Context(), s.actorID(c), "event.restore", "event", nil, map[string]any{
		"requested": len(body.IDs),
		"restored":  result.Restored,
	})

	c.JSON(http.StatusOK, result)
}
