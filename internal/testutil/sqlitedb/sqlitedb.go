// Package sqlitedb opens a migrated in-memory store and seeds two isolated tenants.
package sqlitedb

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/authz"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/client"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/tenant"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/domain/user"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/infrastructure/db"
	"github.com/gesys-solutions/estimateur-carrosserie-sub001/internal/tenancy"
)

// Password is the clear-text password of every seeded user.
const Password = "motdepasse-123"

// Open returns a fresh in-memory database. ":memory:" is per connection, so the pool
// is pinned to a single connection; concurrent transactions queue on it.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

// Shop is one seeded tenant.
type Shop struct {
	Tenant     tenant.Tenant
	Admin      user.User
	Manager    user.User
	Estimator  user.User
	Estimator2 user.User
	Client     client.Client
	Vehicle    client.Vehicle
}

// Fixture holds two tenants that must never see each other.
type Fixture struct {
	A Shop
	B Shop
}

func Seed(t *testing.T, gdb *gorm.DB) *Fixture {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return &Fixture{
		A: seedShop(t, gdb, "carrosserie-a", "Carrosserie A", string(hash)),
		B: seedShop(t, gdb, "carrosserie-b", "Carrosserie B", string(hash)),
	}
}

func seedShop(t *testing.T, gdb *gorm.DB, slug, name, hash string) Shop {
	t.Helper()
	s := Shop{Tenant: tenant.Tenant{Name: name, Slug: slug}}
	must(t, gdb.Create(&s.Tenant).Error)

	mk := func(email string, role authz.Role) user.User {
		u := user.User{
			TenantID:     s.Tenant.ID,
			Email:        email,
			Name:         email,
			PasswordHash: hash,
			Role:         role,
			Active:       true,
		}
		must(t, gdb.Create(&u).Error)
		return u
	}
	// same e-mails in both tenants: uniqueness is per tenant
	s.Admin = mk("admin@atelier.test", authz.RoleAdmin)
	s.Manager = mk("gerant@atelier.test", authz.RoleManager)
	s.Estimator = mk("estimateur@atelier.test", authz.RoleEstimator)
	s.Estimator2 = mk("estimateur2@atelier.test", authz.RoleEstimator)

	s.Client = client.Client{TenantID: s.Tenant.ID, Name: "Client " + name}
	must(t, gdb.Create(&s.Client).Error)
	s.Vehicle = client.Vehicle{ClientID: s.Client.ID, Make: "Honda", Model: "Civic", Year: 2019}
	must(t, gdb.Create(&s.Vehicle).Error)
	return s
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

// ScopeOf returns the scope a request authenticated as u would get.
func ScopeOf(t *testing.T, u user.User) *tenancy.Scope {
	t.Helper()
	r := tenancy.NewResolver(nil, nil, authz.NewEvaluator(authz.DefaultTable()))
	s, err := r.ScopeFor(&u)
	if err != nil {
		t.Fatalf("scope for %s: %v", u.Email, err)
	}
	return s
}
