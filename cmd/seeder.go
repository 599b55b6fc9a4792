package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/safety-management/internal/auth"
	"github.com/frahmantamala/safety-management/internal/certificate"
	tenantDatamodel "github.com/frahmantamala/safety-management/internal/core/datamodel/tenant"
	userDatamodel "github.com/frahmantamala/safety-management/internal/core/datamodel/user"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var clearData bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with a demo tenant, users, permissions and a small certificate history for development.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		app, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := context.Background()
		db := app.Gorm.WithContext(ctx)

		if clearData {
			if err := db.Exec("TRUNCATE certificates, employees, companies, user_permissions, users, permissions, tenants RESTART IDENTITY CASCADE").Error; err != nil {
				return fmt.Errorf("failed to clear data: %w", err)
			}
			fmt.Println("Cleared existing data")
		}

		tenant := tenantDatamodel.Tenant{Name: "Demo Industrial", IsActive: true}
		if err := db.Where(tenantDatamodel.Tenant{Name: tenant.Name}).FirstOrCreate(&tenant).Error; err != nil {
			return fmt.Errorf("failed to seed tenant: %w", err)
		}
		fmt.Printf("Seeded tenant %q (id=%d)\n", tenant.Name, tenant.ID)

		permissions := []userDatamodel.Permission{
			{Name: auth.PermissionAdmin, Description: "full administrator"},
			{Name: auth.PermissionViewCertificates, Description: "Can view certificates and dashboards"},
			{Name: auth.PermissionManageCertificates, Description: "Can create, edit, import and sync certificates"},
		}
		permIDs := make(map[string]int64, len(permissions))
		for i := range permissions {
			p := &permissions[i]
			if err := db.Where(userDatamodel.Permission{Name: p.Name}).FirstOrCreate(p).Error; err != nil {
				return fmt.Errorf("failed to seed permission %s: %w", p.Name, err)
			}
			permIDs[p.Name] = p.ID
		}

		hash, err := bcrypt.GenerateFromPassword([]byte("password"), cfg.Security.BCryptCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		users := []struct {
			Email       string
			Name        string
			Permissions []string
		}{
			{"admin@mail.com", "Safety Admin", []string{auth.PermissionAdmin, auth.PermissionViewCertificates, auth.PermissionManageCertificates}},
			{"tecnico@mail.com", "Técnico de Segurança", []string{auth.PermissionViewCertificates, auth.PermissionManageCertificates}},
			{"auditor@mail.com", "Auditor", []string{auth.PermissionViewCertificates}},
		}
		for _, u := range users {
			if err := seedUser(db, tenant.ID, u.Email, u.Name, string(hash), u.Permissions, permIDs); err != nil {
				return err
			}
			fmt.Printf("Seeded user %s with %v\n", u.Email, u.Permissions)
		}

		res, err := app.Certificates.Import(ctx, tenant.ID, sampleCertificates())
		if err != nil {
			return fmt.Errorf("failed to seed certificates: %w", err)
		}
		for _, f := range res.Failed {
			fmt.Printf("Skipped certificate row %d: %s\n", f.Index, f.Message)
		}
		fmt.Printf("Seeded %d certificates\n", len(res.Succeeded))

		app.Bus.Wait()
		if _, err := app.Certificates.SyncStatuses(ctx, tenant.ID); err != nil {
			return fmt.Errorf("failed to sync statuses: %w", err)
		}
		fmt.Println("Certificate statuses synced")
		return nil
	},
}

func seedUser(db *gorm.DB, tenantID int64, email, name, hash string, perms []string, permIDs map[string]int64) error {
	user := userDatamodel.User{TenantID: tenantID, Email: email, Name: name, PasswordHash: hash, IsActive: true}
	if err := db.Where(userDatamodel.User{Email: email}).FirstOrCreate(&user).Error; err != nil {
		return fmt.Errorf("failed to seed user %s: %w", email, err)
	}
	for _, name := range perms {
		grant := userDatamodel.UserPermission{UserID: user.ID, PermissionID: permIDs[name]}
		if err := db.Where(grant).FirstOrCreate(&grant).Error; err != nil {
			return fmt.Errorf("failed to grant %s to %s: %w", name, email, err)
		}
	}
	return nil
}

// sampleCertificates covers each dashboard bucket: a renewed employee, one
// expiring soon, one overdue and one without an expiry date.
func sampleCertificates() []certificate.ImportRow {
	return []certificate.ImportRow{
		{CompanyName: "Metalúrgica Alfa", EmployeeName: "Ana Souza", CPF: "111.111.111-11", Number: "ASO-0001", Type: "admission", Fitness: "fit", IssuedAt: "2023-01-10", ExpiresAt: "2024-01-10", Physician: "Dr. Lima", Clinic: "Clínica Centro"},
		{CompanyName: "Metalúrgica Alfa", EmployeeName: "Ana Souza", CPF: "111.111.111-11", Number: "ASO-0002", Type: "periodic", Fitness: "fit", IssuedAt: "2024-01-20", ExpiresAt: "2025-01-20", Physician: "Dr. Lima", Clinic: "Clínica Centro"},
		{CompanyName: "Metalúrgica Alfa", EmployeeName: "Bruno Reis", CPF: "222.222.222-22", Number: "ASO-0003", Type: "periodic", Fitness: "fit_with_restrictions", IssuedAt: "2024-03-01", ExpiresAt: "2025-03-01", Physician: "Dra. Costa", Clinic: "Clínica Centro"},
		{CompanyName: "Construtora Beta", EmployeeName: "Carla Dias", CPF: "333.333.333-33", Number: "ASO-0004", Type: "periodic", Fitness: "fit", IssuedAt: "2023-05-01", ExpiresAt: "2024-05-01", Physician: "Dra. Costa", Clinic: "Saúde Ocupacional Sul"},
		{CompanyName: "Construtora Beta", EmployeeName: "Davi Rocha", CPF: "444.444.444-44", Number: "ASO-0005", Type: "role_change", Fitness: "fit", IssuedAt: "2024-02-15"},
		{CompanyName: "Construtora Beta", EmployeeName: "Elisa Nunes", CPF: "555.555.555-55", Number: "ASO-0006", Type: "return_to_work", Fitness: "unfit", IssuedAt: "2024-04-10", ExpiresAt: "2024-10-10", Physician: "Dr. Lima", Clinic: "Saúde Ocupacional Sul"},
	}
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "truncate existing data before seeding")
}
