package server

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ExportData(c *gin.Context) {
	result, err := s.impexSvc.Export(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	_ = s.auditSvc.AuditLog(c.Request.Context(), s.actorID(c), "data.export", "archive", nil, map[string]any{
		"bytes": len(result.Data),
	})

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, "application/zip", result.Data)
}

func (s *Server) ImportData(c *gin.Context) {
	header, err := c.FormFile("archive")
	if err != nil {
		AbortWithError(c, newValidationError("archive", "required", "archive file is required"))
		return
	}

	file, err := header.Open()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.impexSvc.Import(c.Request.Context(), data)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	_ = s.auditSvc.AuditLog(c.Request.Context(), s.actorID(c), "data.import", "archive", nil, map[string]any{
		"tables": len(result.Tables),
	})

	c.JSON(http.StatusOK, result)
}
