package service

import (
	"database/sql"

	"github.com/finledger/portfolio-tracker/internal/database"
)

// SystemService exposes operational health information.
type SystemService struct {
	db *sql.DB
}

// NewSystemService creates a new SystemService with the provided database handle.
func NewSystemService(db *sql.DB) *SystemService {
	return &SystemService{db: db}
}

// AppVersion is the application release identifier reported by the version endpoint.
const AppVersion = "1.0.0"

// VersionInfo carries application and schema version details.
type VersionInfo struct {
	AppVersion string
	DBVersion  int64
}

// HealthCheck verifies database connectivity.
func (s *SystemService) HealthCheck() error {
	return database.HealthCheck(s.db)
}

// CheckVersion reports the application version and the applied migration version.
func (s *SystemService) CheckVersion() (VersionInfo, error) {
	dbVersion, err := database.Version(s.db)
	if err != nil {
		return VersionInfo{}, err
	}
	return VersionInfo{AppVersion: AppVersion, DBVersion: dbVersion}, nil
}
