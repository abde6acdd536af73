package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/memoir/internal/server/access"
	"github.com/dmitrijs2005/memoir/internal/server/config"
	"github.com/dmitrijs2005/memoir/internal/server/models"
	"github.com/dmitrijs2005/memoir/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
		S3Region:                     "us-east-1",
		S3RootUser:                   "minioadmin",
		S3RootPassword:               "minioadmin",
		S3BaseEndpoint:               "http://127.0.0.1:9000",
		S3Bucket:                     "memories",
		ImageUploadValidityDuration:  15 * time.Minute,
	}
}

type fixture struct {
	rm         *repomanager.MemoryRepositoryManager
	users      *UserService
	categories *CategoryService
	memories   *MemoryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rm := repomanager.NewMemoryRepositoryManager()
	return &fixture{
		rm:         rm,
		users:      NewUserService(rm, testConfig()),
		categories: NewCategoryService(rm),
		memories:   NewMemoryService(rm),
	}
}

// register creates a user directly in the store and returns its actor.
func (f *fixture) register(t *testing.T, username string, role models.Role) *access.Actor {
	t.Helper()
	u, err := f.rm.Users(nil).Create(context.Background(), &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
	})
	require.NoError(t, err)
	return access.ActorFor(u)
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }
