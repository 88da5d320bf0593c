package services

import (
	"testing"

	"github.com/Itish41/WorkflowPro/models"
	"github.com/Itish41/WorkflowPro/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) *UserService {
	t.Helper()
	svc := NewUserService(newTestDB(t), testLogger)
	svc.now = testutil.Clock(FixedTime)
	return svc
}

func TestUserService_Create(t *testing.T) {
	svc := newUserService(t)

	u, err := svc.Create(bg, UserInput{FullName: "Mario Rossi", Email: "mario@example.com"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultUserRole, u.Role)
	assert.True(t, u.Active)
	assert.True(t, FixedTime.Equal(u.CreatedAt))

	got, err := svc.Get(bg, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u, got)

	_, err = svc.Create(bg, UserInput{FullName: "Altro Mario", Email: "mario@example.com"})
	appErr := requireKind(t, err, KindConflict)
	assert.Equal(t, "Email già esistente", appErr.Message)

	_, err = svc.Create(bg, UserInput{FullName: "Senza email"})
	appErr = requireKind(t, err, KindValidation)
	assert.Equal(t, "Nome completo e email obbligatori", appErr.Message)

	inactive, err := svc.Create(bg, UserInput{FullName: "Ex", Email: "ex@example.com", Role: "admin", Active: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, "admin", inactive.Role)
	assert.False(t, inactive.Active)
}

func TestUserService_ListOrderedByName(t *testing.T) {
	svc := newUserService(t)
	for _, name := range []string{"Zeno", "Anna", "Marco"} {
		_, err := svc.Create(bg, UserInput{FullName: name, Email: name + "@example.com"})
		require.NoError(t, err)
	}

	users, err := svc.List(bg)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "Anna", users[0].FullName)
	assert.Equal(t, "Zeno", users[2].FullName)
}

func TestUserService_Update(t *testing.T) {
	svc := newUserService(t)
	u, err := svc.Create(bg, UserInput{FullName: "Mario", Email: "mario@example.com", Role: "admin"})
	require.NoError(t, err)
	_, err = svc.Create(bg, UserInput{FullName: "Luigi", Email: "luigi@example.com"})
	require.NoError(t, err)

	updated, err := svc.Update(bg, u.ID, UserInput{FullName: "Mario Rossi", Email: "m.rossi@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Mario Rossi", updated.FullName)
	assert.Equal(t, "admin", updated.Role)
	assert.True(t, updated.Active)

	_, err = svc.Update(bg, u.ID, UserInput{FullName: "Mario", Email: "luigi@example.com"})
	requireKind(t, err, KindConflict)
	_, err = svc.Update(bg, 999, UserInput{FullName: "x", Email: "x@example.com"})
	requireKind(t, err, KindNotFound)
}

func TestUserService_DeleteNullifiesReferences(t *testing.T) {
	svc := newUserService(t)
	db := svc.db
	u := seedUser(t, db, "Mario", "mario@example.com")

	item := seedWorkItem(t, db, "Acme")
	require.NoError(t, db.Model(&item).Update("assegnato_a", u.ID).Error)
	dt := seedDocumentType(t, db, "Visura")
	doc := seedDocument(t, db, item.ID, dt.ID, "1-1-v.pdf")
	require.NoError(t, db.Model(&doc).Update("caricato_da_id", u.ID).Error)
	checklist := models.Checklist{Nome: "KYC", Versione: "1.0", Attiva: true, CreatoDaID: &u.ID, DataCreazione: FixedTime, DataModifica: FixedTime}
	require.NoError(t, db.Create(&checklist).Error)

	require.NoError(t, svc.Delete(bg, u.ID))

	var gotItem models.WorkItem
	require.NoError(t, db.Take(&gotItem, item.ID).Error)
	assert.Nil(t, gotItem.AssegnatoA)
	var gotDoc models.Document
	require.NoError(t, db.Take(&gotDoc, doc.ID).Error)
	assert.Nil(t, gotDoc.CaricatoDaID)
	var gotChecklist models.Checklist
	require.NoError(t, db.Take(&gotChecklist, checklist.ID).Error)
	assert.Nil(t, gotChecklist.CreatoDaID)

	_, err := svc.Get(bg, u.ID)
	requireKind(t, err, KindNotFound)
	requireKind(t, svc.Delete(bg, u.ID), KindNotFound)
}
