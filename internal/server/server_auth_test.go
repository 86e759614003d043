package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	auditdomain "github.com/opengov-ph/barangay/internal/audit/domain"
	auditrepository "github.com/opengov-ph/barangay/internal/audit/repository"
	auditservice "github.com/opengov-ph/barangay/internal/audit/service"
	authdomain "github.com/opengov-ph/barangay/internal/auth/domain"
	"github.com/opengov-ph/barangay/internal/auth/password"
	authrepository "github.com/opengov-ph/barangay/internal/auth/repository"
	authservice "github.com/opengov-ph/barangay/internal/auth/service"
	"github.com/opengov-ph/barangay/internal/auth/session"
	"github.com/opengov-ph/barangay/internal/config"
	eventdomain "github.com/opengov-ph/barangay/internal/event/domain"
	eventrepository "github.com/opengov-ph/barangay/internal/event/repository"
	eventservice "github.com/opengov-ph/barangay/internal/event/service"
	householddomain "github.com/opengov-ph/barangay/internal/household/domain"
	householdrepository "github.com/opengov-ph/barangay/internal/household/repository"
	householdservice "github.com/opengov-ph/barangay/internal/household/service"
	"github.com/opengov-ph/barangay/internal/impex"
	"github.com/opengov-ph/barangay/internal/providers/email"
	"github.com/opengov-ph/barangay/internal/providers/pdf"
	"github.com/opengov-ph/barangay/internal/providers/storage"
	requestdomain "github.com/opengov-ph/barangay/internal/request/domain"
	requestrepository "github.com/opengov-ph/barangay/internal/request/repository"
	requestservice "github.com/opengov-ph/barangay/internal/request/service"
	"github.com/opengov-ph/barangay/internal/resetcode"
	"github.com/opengov-ph/barangay/internal/shadow"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestServer(t *testing.T, name string) (*Server, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := db.AutoMigrate(
		&requestdomain.Request{},
		&shadow.Entry[requestdomain.RequestFields]{},
		&eventdomain.Event{},
		&shadow.Entry[eventdomain.EventFields]{},
		&householddomain.Household{},
		&shadow.Entry[householddomain.HouseholdFields]{},
		&authdomain.Account{},
		&authdomain.Session{},
		&resetcode.ResetCode{},
		&auditdomain.AuditLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	log := zap.NewNop()
	cfg := config.Config{SessionTTLHours: 12, ResetCodeTTLMin: 15}

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	srv := NewServer(ServerParams{
		Gin:   engine,
		Cfg:   cfg,
		DB:    db,
		Log:   log,
		GenID: node,
		Authsvc: authservice.New(authservice.Params{
			Cfg:   cfg,
			DB:    db,
			Log:   log,
			GenID: node,
			Repo:  authrepository.Provide(),
		}),
		Sessions: session.NewManager(cfg),
		AuditSvc: auditservice.New(auditservice.Params{
			DB:    db,
			Log:   log,
			GenID: node,
			Repo:  auditrepository.Provide(),
		}),
		RequestSvc: requestservice.New(requestservice.Params{
			DB:    db,
			Log:   log,
			GenID: node,
			Repo:  requestrepository.Provide(),
		}),
		EventSvc: eventservice.New(eventservice.Params{
			DB:      db,
			Log:     log,
			GenID:   node,
			Repo:    eventrepository.Provide(),
			Storage: &storage.NoOpProvider{},
		}),
		HouseholdSvc: householdservice.New(householdservice.Params{
			DB:    db,
			Log:   log,
			GenID: node,
			Repo:  householdrepository.Provide(),
		}),
		ResetCodes: resetcode.New(resetcode.Params{Cfg: cfg, DB: db, Log: log, GenID: node}),
		ImpexSvc:   impex.New(impex.Params{DB: db, Log: log}),
		Emailer:    &email.NoOpProvider{},
		PDFs:       &pdf.NoOpProvider{},
		Storage:    &storage.NoOpProvider{},
	})
	return srv, db
}

func seedServerAccount(t *testing.T, db *gorm.DB, node *snowflake.Node, emailAddr, plaintext string, role authdomain.Role) {
	t.Helper()

	hash, err := password.Hash(plaintext)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()
	account := authdomain.Account{
		ID:           node.Generate(),
		Email:        emailAddr,
		Name:         "Test Staff",
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := authrepository.Provide().InsertAccount(context.Background(), db, &account); err != nil {
		t.Fatalf("insert account: %v", err)
	}
}

func loginCookie(t *testing.T, srv *Server, emailAddr, plaintext string) *http.Cookie {
	t.Helper()

	body := fmt.Sprintf(`{"email":%q,"password":%q}`, emailAddr, plaintext)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	srv.Engine().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("login: expected status 200, got %d (%s)", resp.Code, resp.Body.String())
	}
	for _, cookie := range resp.Result().Cookies() {
		if cookie.Name == session.DefaultCookieName {
			return cookie
		}
	}
	t.Fatal("login response carries no session cookie")
	return nil
}

func TestAdminRoutesRequireSession(t *testing.T) {
	srv, _ := newTestServer(t, "srv_session")

	req := httptest.NewRequest(http.MethodGet, "/admin/requests", nil)
	resp := httptest.NewRecorder()
	srv.Engine().ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without a session, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/requests", nil)
	req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: "not-a-session"})
	resp = httptest.NewRecorder()
	srv.Engine().ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 with a bogus session, got %d", resp.Code)
	}
}

func TestRestoreRequiresStepUp(t *testing.T) {
	srv, db := newTestServer(t, "srv_stepup")
	ctx := context.Background()

	seedServerAccount(t, db, srv.genID, "staff@barangay.local", "hunter2hunter2", authdomain.RoleStaff)
	cookie := loginCookie(t, srv, "staff@barangay.local", "hunter2hunter2")

	created, err := srv.requestSvc.Submit(ctx, requestdomain.SubmitRequest{
		LastName:        "Cruz",
		FirstName:       "Ana",
		Address:         "1 Purok 2",
		CertificateType: requestdomain.CertificateClearance,
	})
	if err != nil {
		t.Fatalf("submit request: %v", err)
	}
	if err := srv.requestSvc.Delete(ctx, created.ID.String()); err != nil {
		t.Fatalf("delete request: %v", err)
	}

	backups, err := srv.requestSvc.ListBackups(ctx)
	if err != nil {
		t.Fatalf("list backups: %v", err)
	}
	var entryID string
	for _, entry := range backups {
		if entry.BackupType == shadow.BackupDelete {
			entryID = entry.ID.String()
		}
	}
	if entryID == "" {
		t.Fatal("no delete snapshot found")
	}

	body, err := json.Marshal(map[string][]string{"ids": {entryID}})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}

	restore := func(confirm string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/admin/requests/backup/restore", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(cookie)
		if confirm != "" {
			req.Header.Set(HeaderConfirmPassword, confirm)
		}
		resp := httptest.NewRecorder()
		srv.Engine().ServeHTTP(resp, req)
		return resp
	}

	// A session alone is not enough; the password confirmation is required.
	if resp := restore(""); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 without confirmation, got %d", resp.Code)
	}
	if resp := restore("wrong-password"); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 with a wrong password, got %d", resp.Code)
	}

	resp := restore("hunter2hunter2")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 with the correct password, got %d (%s)", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), `"restored":1`) {
		t.Fatalf("expected one restored item, got %s", resp.Body.String())
	}

	listed, err := srv.requestSvc.List(ctx, requestdomain.ListRequest{})
	if err != nil {
		t.Fatalf("list requests: %v", err)
	}
	if len(listed.Requests) != 1 {
		t.Fatalf("expected 1 live request after restore, got %d", len(listed.Requests))
	}
}

func TestImportRequiresAdminRoleAndStepUp(t *testing.T) {
	srv, db := newTestServer(t, "srv_import")

	seedServerAccount(t, db, srv.genID, "staff@barangay.local", "hunter2hunter2", authdomain.RoleStaff)
	seedServerAccount(t, db, srv.genID, "admin@barangay.local", "hunter2hunter2", authdomain.RoleAdmin)

	doImport := func(cookie *http.Cookie, confirm string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/admin/import", nil)
		req.AddCookie(cookie)
		if confirm != "" {
			req.Header.Set(HeaderConfirmPassword, confirm)
		}
		resp := httptest.NewRecorder()
		srv.Engine().ServeHTTP(resp, req)
		return resp
	}

	staffCookie := loginCookie(t, srv, "staff@barangay.local", "hunter2hunter2")
	if resp := doImport(staffCookie, "hunter2hunter2"); resp.Code != http.StatusForbidden {
		t.Fatalf("expected status 403 for a staff account, got %d", resp.Code)
	}

	adminCookie := loginCookie(t, srv, "admin@barangay.local", "hunter2hunter2")
	if resp := doImport(adminCookie, ""); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 without confirmation, got %d", resp.Code)
	}

	// With the role and the confirmation in place the handler itself takes
	// over, rejecting the missing archive upload.
	resp := doImport(adminCookie, "hunter2hunter2")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for a missing archive, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "archive") {
		t.Fatalf("expected an archive validation error, got %s", resp.Body.String())
	}
}
