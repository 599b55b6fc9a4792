package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	apperrors "github.com/frahmantamala/safety-management/internal"
	"github.com/frahmantamala/safety-management/internal/transport"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Handler", func() {
	var (
		handler *Handler
		tokens  *JWTTokenGenerator
	)

	ginkgo.BeforeEach(func() {
		tokens = NewJWTTokenGenerator(testAccessSecret, testRefreshSecret, time.Minute, time.Hour)
		handler = NewHandler(transport.NewBaseHandler(testLogger), NewService(newMockRepository(), tokens, testLogger))
	})

	protected := func(perms ...string) http.Handler {
		return handler.AuthMiddleware(handler.RequirePermissions(perms...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID, _ := apperrors.TenantIDFromContext(r.Context())
			gomega.Expect(tenantID).To(gomega.Equal(int64(10)))
			w.WriteHeader(http.StatusNoContent)
		})))
	}

	bearer := func(userID int64) string {
		token, err := tokens.GenerateAccessToken(Credentials{UserID: userID, TenantID: 10})
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		return "Bearer " + token
	}

	ginkgo.It("should log in with valid credentials", func() {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"user@example.com","password":"correct_password"}`))
		rec := httptest.NewRecorder()
		handler.Login(rec, req)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("access_token"))
	})

	ginkgo.It("should answer 401 with an error code for bad credentials", func() {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"user@example.com","password":"wrong"}`))
		rec := httptest.NewRecorder()
		handler.Login(rec, req)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring(string(apperrors.ErrCodeInvalidCredentials)))
	})

	ginkgo.It("should reject requests without a token", func() {
		rec := httptest.NewRecorder()
		protected(PermissionViewCertificates).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
	})

	ginkgo.It("should pass users holding the permission", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", bearer(1))
		rec := httptest.NewRecorder()
		protected(PermissionViewCertificates).ServeHTTP(rec, req)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNoContent))
	})

	ginkgo.It("should forbid users lacking the permission", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", bearer(1))
		rec := httptest.NewRecorder()
		protected(PermissionManageCertificates).ServeHTTP(rec, req)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
	})

	ginkgo.It("should forbid tokens minted for another tenant", func() {
		token, _ := tokens.GenerateAccessToken(Credentials{UserID: 2, TenantID: 99})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		protected(PermissionViewCertificates).ServeHTTP(rec, req)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
		gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring(string(apperrors.ErrCodeTenantMismatch)))
	})
})
