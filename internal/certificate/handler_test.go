package certificate

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	apperrors "github.com/frahmantamala/safety-management/internal"
	"github.com/frahmantamala/safety-management/internal/compliance"
	certificateDatamodel "github.com/frahmantamala/safety-management/internal/core/datamodel/certificate"
	"github.com/frahmantamala/safety-management/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Handler", func() {
	var (
		repo   *mockRepository
		router chi.Router
	)

	BeforeEach(func() {
		repo = newMockRepository()
		employees := newMockEmployees(compliance.Employee{ID: 1, CompanyID: 10, Name: "Ana Souza", CPF: "11111111111"})
		companies := &mockCompanies{list: []compliance.Company{{ID: 10, Name: "Alfa"}}}
		svc := NewService(repo, employees, companies, nil, nil, compliance.DefaultThresholds(), testLogger).
			WithClock(func() time.Time { return time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC) })
		h := NewHandler(transport.NewBaseHandler(testLogger), svc)

		router = chi.NewRouter()
		router.Get("/certificates", h.ListCertificates)
		router.Post("/certificates", h.CreateCertificate)
		router.Post("/certificates/import", h.Import)
		router.Post("/certificates/sync-status", h.SyncStatuses)
		router.Get("/certificates/{id}", h.GetCertificate)
		router.Put("/certificates/{id}", h.UpdateCertificate)
		router.Delete("/certificates/{id}", h.DeleteCertificate)
		router.Get("/dashboard", h.Dashboard)
		router.Get("/employees/{id}/history", h.EmployeeHistory)
		router.Get("/employees/{id}/history.csv", h.EmployeeHistoryCSV)
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req = req.WithContext(apperrors.ContextWithTenantID(req.Context(), 1))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("rejects requests without a tenant", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/certificates", nil))
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("creates a certificate and returns it", func() {
		rec := do(http.MethodPost, "/certificates", `{"employee_id":1,"type":"periodic","fitness":"fit","issued_at":"2024-01-02","expires_at":"2025-01-02"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))

		var c Certificate
		Expect(json.Unmarshal(rec.Body.Bytes(), &c)).To(Succeed())
		Expect(c.ID).To(Equal(int64(1)))
		Expect(c.Status).To(Equal(compliance.StatusActive))
	})

	It("rejects unknown fields", func() {
		rec := do(http.MethodPost, "/certificates", `{"employee_id":1,"kind":"periodic"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("returns field errors with their codes", func() {
		rec := do(http.MethodPost, "/certificates", `{"employee_id":1,"type":"periodic","fitness":"fit","expires_at":"2025-13-40"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring(string(apperrors.ErrCodeInvalidDate)))
	})

	It("answers 404 for unknown certificates", func() {
		Expect(do(http.MethodGet, "/certificates/42", "").Code).To(Equal(http.StatusNotFound))
		Expect(do(http.MethodDelete, "/certificates/42", "").Code).To(Equal(http.StatusNotFound))
	})

	It("rejects malformed ids", func() {
		Expect(do(http.MethodGet, "/certificates/abc", "").Code).To(Equal(http.StatusBadRequest))
	})

	It("rejects malformed list filters", func() {
		rec := do(http.MethodGet, "/certificates?type=annual&expires_from=yesterday", "")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring("expires_from"))
	})

	Context("with stored certificates", func() {
		BeforeEach(func() {
			repo.seed(certificateDatamodel.Certificate{ID: 1, TenantID: 1, EmployeeID: 1, CompanyID: 10, Type: "admission", Fitness: "fit", Status: "overdue", IssuedAt: day("2023-01-10"), ExpiresAt: day("2024-01-10")})
			repo.seed(certificateDatamodel.Certificate{ID: 2, TenantID: 1, EmployeeID: 1, CompanyID: 10, Type: "periodic", Fitness: "fit", Status: "overdue", IssuedAt: day("2024-01-20"), ExpiresAt: day("2025-01-20")})
		})

		It("lists current certificates and full history on request", func() {
			var res ListResponse
			Expect(json.Unmarshal(do(http.MethodGet, "/certificates", "").Body.Bytes(), &res)).To(Succeed())
			Expect(res.Count).To(Equal(1))
			Expect(res.Certificates[0].ID).To(Equal(int64(2)))

			Expect(json.Unmarshal(do(http.MethodGet, "/certificates?history=true", "").Body.Bytes(), &res)).To(Succeed())
			Expect(res.Count).To(Equal(2))
		})

		It("updates and deletes", func() {
			rec := do(http.MethodPut, "/certificates/2", `{"type":"periodic","fitness":"unfit","expires_at":"2025-01-20"}`)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`"fitness":"unfit"`))

			Expect(do(http.MethodDelete, "/certificates/2", "").Code).To(Equal(http.StatusNoContent))
			Expect(repo.rows).To(HaveLen(1))
		})

		It("syncs stale statuses", func() {
			rec := do(http.MethodPost, "/certificates/sync-status", "")
			Expect(rec.Code).To(Equal(http.StatusOK))
			var res SyncResult
			Expect(json.Unmarshal(rec.Body.Bytes(), &res)).To(Succeed())
			Expect(res).To(Equal(SyncResult{Checked: 2, Updated: 1, NowActive: 1}))
		})

		It("serves the dashboard", func() {
			rec := do(http.MethodGet, "/dashboard", "")
			Expect(rec.Code).To(Equal(http.StatusOK))
			var report compliance.Report
			Expect(json.Unmarshal(rec.Body.Bytes(), &report)).To(Succeed())
			Expect(report.TotalCertificates).To(Equal(2))
			Expect(report.Coverage.Percentage).To(Equal(100))
		})

		It("serves the employee history as json and csv", func() {
			rec := do(http.MethodGet, "/employees/1/history", "")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`"late_renewals":1`))

			rec = do(http.MethodGet, "/employees/1/history.csv", "")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(HavePrefix("text/csv"))
			Expect(rec.Header().Get("Content-Disposition")).To(ContainSubstring("aso-history-1.csv"))
			Expect(rec.Body.String()).To(HavePrefix("certificate_id,"))
		})
	})

	It("answers 404 for history of unknown employees", func() {
		Expect(do(http.MethodGet, "/employees/5/history", "").Code).To(Equal(http.StatusNotFound))
	})

	Describe("Import", func() {
		It("rejects an empty import", func() {
			Expect(do(http.MethodPost, "/certificates/import", `{"rows":[]}`).Code).To(Equal(http.StatusBadRequest))
		})

		It("answers 200 when every row succeeds", func() {
			rec := do(http.MethodPost, "/certificates/import", `{"rows":[{"company_name":"Alfa","employee_name":"Ana Souza","cpf":"111.111.111-11","type":"periodic","fitness":"fit","expires_at":"2025-01-01"}]}`)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(repo.rows).To(HaveLen(1))
		})

		It("answers 207 with per-row failures", func() {
			rec := do(http.MethodPost, "/certificates/import", `{"rows":[
				{"company_name":"Alfa","employee_name":"Ana Souza","cpf":"11111111111","type":"periodic","fitness":"fit"},
				{"company_name":"Alfa","employee_name":"Bruno","cpf":"12","type":"periodic","fitness":"fit"}
			]}`)
			Expect(rec.Code).To(Equal(http.StatusMultiStatus))
			Expect(rec.Body.String()).To(ContainSubstring(`"reason":"validation"`))
		})
	})
})
