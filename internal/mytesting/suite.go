package mytesting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/lumora-ai/chatcore/internal/db"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// Suite opens a fresh in-memory store per test so suites can exercise the
// history layer without external services.
type Suite struct {
	suite.Suite
	context.Context

	Cancel context.CancelFunc
	DB     *gorm.DB
}

func (s *Suite) SetupTest() {
	if projectRoot, err := s.findProjectRoot(); err == nil {
		envFile := filepath.Join(projectRoot, ".env.test")
		if _, err := os.Stat(envFile); err == nil {
			s.Require().NoError(godotenv.Load(envFile))
		}
	}

	s.Context, s.Cancel = context.WithCancel(context.TODO())

	gdb, err := db.OpenDB(":memory:")
	s.Require().NoError(err)
	s.Require().NoError(db.AutoMigrate(s.Context, gdb))
	s.DB = gdb
}

func (s *Suite) TearDownTest() {
	if s.DB != nil {
		s.Require().NoError(db.CloseDB(s.DB))
	}
	s.Cancel()
}

// findProjectRoot searches for go.mod file starting from the current file location
func (s *Suite) findProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to get caller information")
	}

	dir := filepath.Dir(filename)

	for {
		goModPath := filepath.Join(dir, "go.mod")
		if _, err := os.Stat(goModPath); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("go.mod not found in any parent directory")
}
