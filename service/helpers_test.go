package services

import (
	"context"
	"testing"
	"time"

	"github.com/Itish41/WorkflowPro/logging"
	"github.com/Itish41/WorkflowPro/models"
	"github.com/Itish41/WorkflowPro/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// FixedTime is the first instant handed out by test clocks.
var FixedTime = time.Date(2025, time.March, 5, 9, 0, 0, 0, time.UTC)

var testLogger = logging.Discard()

func newTestDB(t *testing.T) *gorm.DB {
	return testutil.NewDB(t)
}

func seedUser(t *testing.T, db *gorm.DB, name, email string) models.User {
	t.Helper()
	u := models.User{FullName: name, Email: email, Role: "user", Active: true, CreatedAt: FixedTime}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func seedWorkItem(t *testing.T, db *gorm.DB, cliente string) models.WorkItem {
	t.Helper()
	w := models.WorkItem{
		Cliente:       cliente,
		Stato:         models.StatusPending,
		Priorita:      models.PriorityMedium,
		DataCreazione: FixedTime,
	}
	require.NoError(t, db.Create(&w).Error)
	return w
}

func seedDocumentType(t *testing.T, db *gorm.DB, nome string) models.DocumentType {
	t.Helper()
	dt := models.DocumentType{
		Nome: nome, Icona: "badge", Colore: "blue", Categoria: "Identità",
		Attivo: true, DataCreazione: FixedTime, DataModifica: FixedTime,
	}
	require.NoError(t, db.Create(&dt).Error)
	return dt
}

func seedDocument(t *testing.T, db *gorm.DB, workItemID, typeID int64, key string) models.Document {
	t.Helper()
	d := models.Document{
		LavorazioneID:   workItemID,
		TipoDocumentoID: &typeID,
		NomeFile:        "doc.pdf",
		PathFile:        key,
		DimensioneBytes: 3,
		MimeType:        "application/pdf",
		DataCaricamento: FixedTime,
	}
	require.NoError(t, db.Create(&d).Error)
	return d
}

func requireKind(t *testing.T, err error, kind Kind) *AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, kind, appErr.Kind, "message: %s", appErr.Message)
	return appErr
}

func ptr[T any](v T) *T { return &v }

var bg = context.Background()
