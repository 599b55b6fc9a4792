package rest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/safety-management/internal/auth"
	"github.com/frahmantamala/safety-management/internal/certificate"
	"github.com/frahmantamala/safety-management/internal/compliance"
	"github.com/frahmantamala/safety-management/internal/core/batch"
	"github.com/frahmantamala/safety-management/internal/metrics"
	"github.com/frahmantamala/safety-management/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	accessSecret  = "router-test-access-secret-0123456789"
	refreshSecret = "router-test-refresh-secret-0123456789"
)

type userRepo map[int64]*auth.User

func (u userRepo) GetCredentialsByEmail(context.Context, string) (*auth.Credentials, error) {
	return nil, auth.ErrUserNotFound
}

func (u userRepo) GetUserWithPermissions(_ context.Context, id int64) (*auth.User, error) {
	if user, ok := u[id]; ok {
		return user, nil
	}
	return nil, auth.ErrUserNotFound
}

// stubCertificates answers every call with an empty result.
type stubCertificates struct{ created int }

func (s *stubCertificates) Get(context.Context, int64, int64) (*certificate.Certificate, error) {
	return &certificate.Certificate{ID: 1}, nil
}
func (s *stubCertificates) Create(context.Context, int64, certificate.CreateCertificateDTO) (*certificate.Certificate, error) {
	s.created++
	return &certificate.Certificate{ID: 1}, nil
}
func (s *stubCertificates) Update(context.Context, int64, int64, certificate.UpdateCertificateDTO) (*certificate.Certificate, error) {
	return &certificate.Certificate{ID: 1}, nil
}
func (s *stubCertificates) Delete(context.Context, int64, int64) error { return nil }
func (s *stubCertificates) List(context.Context, int64, certificate.ListQuery) (*certificate.ListResponse, error) {
	return &certificate.ListResponse{Certificates: []compliance.ListItem{}}, nil
}
func (s *stubCertificates) Dashboard(context.Context, int64) (*compliance.Report, error) {
	return &compliance.Report{}, nil
}
func (s *stubCertificates) EmployeeHistory(context.Context, int64, int64) (*certificate.EmployeeHistory, error) {
	return &certificate.EmployeeHistory{}, nil
}
func (s *stubCertificates) SyncStatuses(context.Context, int64) (*certificate.SyncResult, error) {
	return &certificate.SyncResult{}, nil
}
func (s *stubCertificates) Import(context.Context, int64, []certificate.ImportRow) (batch.Result[certificate.ImportRow], error) {
	return batch.Result[certificate.ImportRow]{}, nil
}

var _ = Describe("RegisterAllRoutes", func() {
	var (
		router *chi.Mux
		tokens *auth.JWTTokenGenerator
		certs  *stubCertificates
		dbErr  error
	)

	BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		base := transport.NewBaseHandler(lg)
		tokens = auth.NewJWTTokenGenerator(accessSecret, refreshSecret, time.Minute, time.Hour)
		users := userRepo{
			1: {ID: 1, TenantID: 10, Permissions: []string{auth.PermissionViewCertificates}},
			2: {ID: 2, TenantID: 10, Permissions: []string{auth.PermissionManageCertificates}},
		}
		certs = &stubCertificates{}
		dbErr = nil

		router = chi.NewRouter()
		RegisterAllRoutes(router, Handlers{
			Auth:        auth.NewHandler(base, auth.NewService(users, tokens, lg)),
			Certificate: certificate.NewHandler(base, certs),
			Health: NewHealthHandler(map[string]CheckFunc{
				"postgres": func(context.Context) error { return dbErr },
			}),
			Metrics: metrics.New(prometheus.NewRegistry()),
		}, "*", lg)
	})

	call := func(method, path string, userID int64, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if userID > 0 {
			token, err := tokens.GenerateAccessToken(auth.Credentials{UserID: userID, TenantID: 10})
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("serves health checks without authentication", func() {
		Expect(call(http.MethodGet, "/api/v1/ping", 0, "").Code).To(Equal(http.StatusOK))
		Expect(call(http.MethodGet, "/api/v1/health", 0, "").Code).To(Equal(http.StatusOK))

		dbErr = errors.New("connection refused")
		rec := call(http.MethodGet, "/api/v1/health", 0, "")
		Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
		Expect(rec.Body.String()).To(ContainSubstring("connection refused"))
	})

	It("requires a token for certificate routes", func() {
		Expect(call(http.MethodGet, "/api/v1/certificates", 0, "").Code).To(Equal(http.StatusUnauthorized))
	})

	It("lets viewers read but not write", func() {
		Expect(call(http.MethodGet, "/api/v1/certificates", 1, "").Code).To(Equal(http.StatusOK))
		Expect(call(http.MethodGet, "/api/v1/dashboard", 1, "").Code).To(Equal(http.StatusOK))
		Expect(call(http.MethodPost, "/api/v1/certificates/sync-status", 1, "").Code).To(Equal(http.StatusForbidden))
		Expect(certs.created).To(Equal(0))
	})

	It("lets managers read and write", func() {
		Expect(call(http.MethodGet, "/api/v1/certificates/1", 2, "").Code).To(Equal(http.StatusOK))
		rec := call(http.MethodPost, "/api/v1/certificates", 2, `{"employee_id":1,"type":"periodic","fitness":"fit"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(certs.created).To(Equal(1))
	})

	It("exposes request metrics by route pattern", func() {
		call(http.MethodGet, "/api/v1/ping", 0, "")
		rec := call(http.MethodGet, "/metrics", 0, "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`path="/api/v1/ping"`))
	})

	It("echoes a trace id on every response", func() {
		Expect(call(http.MethodGet, "/api/v1/ping", 0, "").Header().Get("X-Trace-ID")).NotTo(BeEmpty())
	})
})
