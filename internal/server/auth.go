package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/opengov-ph/barangay/internal/auth/domain"
	"github.com/opengov-ph/barangay/internal/providers/email"
	"go.uber.org/zap"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type ForgotRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

func (s *Server) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	email := strings.TrimSpace(req.Email)
	result, err := s.authsvc.Login(c.Request.Context(), authdomain.LoginRequest{
		Email:     email,
		Password:  req.Password,
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		_ = s.auditSvc.AuditLog(c.Request.Context(), nil, "auth.login_failed", "account", nil, map[string]any{
			"email": email,
		})
		AbortWithError(c, err)
		return
	}

	s.sessions.Set(c, result.RawToken, result.ExpiresAt)

	accountID := result.Account.ID.String()
	_ = s.auditSvc.AuditLog(c.Request.Context(), &accountID, "auth.login", "account", &accountID, map[string]any{
		"email": email,
	})

	c.JSON(http.StatusOK, result.Account)
}

func (s *Server) Logout(c *gin.Context) {
	if token, ok := s.sessions.ReadToken(c); ok {
		if err := s.authsvc.Logout(c.Request.Context(), token); err != nil {
			s.log.Warn("logout failed", zap.Error(err))
		}
	}
	s.sessions.Clear(c)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) Me(c *gin.Context) {
	account, ok := s.accountFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (s *Server) ChangePassword(c *gin.Context) {
	account, ok := s.accountFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	currentPassword := strings.TrimSpace(req.CurrentPassword)
	newPassword := strings.TrimSpace(req.NewPassword)
	if currentPassword == "" {
		AbortWithError(c, newValidationError("current_password", "required", "current password is required"))
		return
	}
	if newPassword == "" {
		AbortWithError(c, newValidationError("new_password", "required", "new password is required"))
		return
	}
	if currentPassword == newPassword {
		AbortWithError(c, newValidationError("new_password", "must_differ", "new password must be different"))
		return
	}

	if err := s.authsvc.ChangePassword(c.Request.Context(), account.ID.String(), currentPassword, newPassword); err != nil {
		AbortWithError(c, err)
		return
	}

	accountID := account.ID.String()
	_ = s.auditSvc.AuditLog(c.Request.Context(), &accountID, "auth.change_password", "account", &accountID, nil)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Forgot issues a reset code and emails it. The response is identical whether
// or not the email matches an account, so addresses cannot be probed.
func (s *Server) Forgot(c *gin.Context) {
	var req ForgotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	address := strings.ToLower(strings.TrimSpace(req.Email))
	if address == "" {
		AbortWithError(c, newValidationError("email", "required", "email is required"))
		return
	}

	if _, err := s.authsvc.GetByEmail(c.Request.Context(), address); err == nil {
		code, err := s.resetCodes.Issue(c.Request.Context(), address)
		if err != nil {
			s.log.Warn("failed to issue reset code", zap.Error(err))
		} else {
			body, err := email.RenderResetCode(email.ResetCodeData{
				Code:         code,
				TTLMinutes:   s.cfg.ResetCodeTTLMin,
				BarangayName: s.cfg.BarangayName,
			})
			if err == nil {
				if err := s.emailer.Send(c.Request.Context(), []string{address}, "Password reset code", body); err != nil {
					s.log.Warn("failed to send reset code", zap.Error(err))
				}
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	address := strings.ToLower(strings.TrimSpace(req.Email))
	newPassword := strings.TrimSpace(req.NewPassword)
	if address == "" || strings.TrimSpace(req.Code) == "" {
		AbortWithError(c, invalidRequestError())
		return
	}
	if newPassword == "" {
		AbortWithError(c, newValidationError("new_password", "required", "new password is required"))
		return
	}

	if err := s.resetCodes.Consume(c.Request.Context(), address, req.Code); err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.authsvc.SetPassword(c.Request.Context(), address, newPassword); err != nil {
		AbortWithError(c, err)
		return
	}

	_ = s.auditSvc.AuditLog(c.Request.Context(), nil, "auth.reset_password", "account", nil, map[string]any{
		"email": address,
	})

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
