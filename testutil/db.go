// Package testutil provides the in-memory database used by package tests.
package testutil

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Itish41/WorkflowPro/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var nameReplacer = strings.NewReplacer("/", "_", " ", "_", "#", "_")

// NewDB opens a private shared-cache SQLite database migrated with every
// model. A single connection keeps transactions from locking each other.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + nameReplacer.Replace(t.Name()) + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.WorkItem{},
		&models.DocumentType{},
		&models.Document{},
		&models.Checklist{},
		&models.ChecklistQuestion{},
	))
	return db
}

// Clock returns a time source that advances by one second per call,
// starting at start. Safe for concurrent use.
func Clock(start time.Time) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := next
		next = next.Add(time.Second)
		return t
	}
}
