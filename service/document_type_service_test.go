package services

import (
	"testing"

	"github.com/Itish41/WorkflowPro/models"
	"github.com/Itish41/WorkflowPro/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDocumentTypeService(t *testing.T) *DocumentTypeService {
	t.Helper()
	svc := NewDocumentTypeService(newTestDB(t), testLogger)
	svc.now = testutil.Clock(FixedTime)
	return svc
}

func TestDocumentTypeService_CreateDefaults(t *testing.T) {
	svc := newDocumentTypeService(t)

	dt, err := svc.Create(bg, DocumentTypeInput{Nome: "  Carta d'identità  ", Categoria: "Identità"})
	require.NoError(t, err)
	assert.Equal(t, "Carta d'identità", dt.Nome)
	assert.Equal(t, models.DefaultDocumentTypeIcon, dt.Icona)
	assert.Equal(t, models.DefaultDocumentTypeColor, dt.Colore)
	assert.Zero(t, dt.Ordine)
	assert.True(t, dt.Attivo)

	got, err := svc.Get(bg, dt.ID)
	require.NoError(t, err)
	assert.Equal(t, dt, got)
}

func TestDocumentTypeService_CreateValidation(t *testing.T) {
	svc := newDocumentTypeService(t)

	_, err := svc.Create(bg, DocumentTypeInput{Nome: "   "})
	appErr := requireKind(t, err, KindValidation)
	assert.Equal(t, "Nome tipo documento obbligatorio", appErr.Message)
}

func TestDocumentTypeService_DuplicateName(t *testing.T) {
	svc := newDocumentTypeService(t)

	_, err := svc.Create(bg, DocumentTypeInput{Nome: "Visura camerale"})
	require.NoError(t, err)
	_, err = svc.Create(bg, DocumentTypeInput{Nome: "Visura camerale"})
	appErr := requireKind(t, err, KindConflict)
	assert.Equal(t, "Tipo documento già esistente", appErr.Message)

	other, err := svc.Create(bg, DocumentTypeInput{Nome: "Visura catastale"})
	require.NoError(t, err)
	_, err = svc.Update(bg, other.ID, DocumentTypeInput{Nome: "Visura camerale"})
	requireKind(t, err, KindConflict)
}

func TestDocumentTypeService_ListActiveOrdered(t *testing.T) {
	svc := newDocumentTypeService(t)

	for _, in := range []DocumentTypeInput{
		{Nome: "Zeta", Ordine: ptr(1)},
		{Nome: "Beta", Ordine: ptr(2)},
		{Nome: "Alfa", Ordine: ptr(2)},
		{Nome: "Spento", Ordine: ptr(0)},
	} {
		_, err := svc.Create(bg, in)
		require.NoError(t, err)
	}
	var spento models.DocumentType
	require.NoError(t, svc.db.Where("nome = ?", "Spento").Take(&spento).Error)
	require.NoError(t, svc.Deactivate(bg, spento.ID))

	list, err := svc.List(bg)
	require.NoError(t, err)
	names := make([]string, 0, len(list))
	for _, dt := range list {
		names = append(names, dt.Nome)
	}
	assert.Equal(t, []string{"Zeta", "Alfa", "Beta"}, names)

	// inactive types stay readable
	got, err := svc.Get(bg, spento.ID)
	require.NoError(t, err)
	assert.False(t, got.Attivo)
}

func TestDocumentTypeService_Update(t *testing.T) {
	svc := newDocumentTypeService(t)
	dt, err := svc.Create(bg, DocumentTypeInput{Nome: "Busta paga", Icona: "payments", Colore: "green", Ordine: ptr(3)})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(bg, dt.ID))

	updated, err := svc.Update(bg, dt.ID, DocumentTypeInput{Nome: "Cedolino", Categoria: "Reddito"})
	require.NoError(t, err)
	assert.Equal(t, "Cedolino", updated.Nome)
	assert.Equal(t, "Reddito", updated.Categoria)
	assert.Equal(t, models.DefaultDocumentTypeIcon, updated.Icona)
	assert.Zero(t, updated.Ordine)
	assert.True(t, updated.Attivo, "omitted attivo reactivates")
	assert.True(t, updated.DataModifica.After(dt.DataModifica))
	assert.True(t, dt.DataCreazione.Equal(updated.DataCreazione))

	kept, err := svc.Update(bg, dt.ID, DocumentTypeInput{Nome: "Cedolino", Attivo: ptr(false)})
	require.NoError(t, err)
	assert.False(t, kept.Attivo)

	_, err = svc.Update(bg, 999, DocumentTypeInput{Nome: "x"})
	requireKind(t, err, KindNotFound)
}

func TestDocumentTypeService_DeactivateInUse(t *testing.T) {
	svc := newDocumentTypeService(t)
	dt := seedDocumentType(t, svc.db, "Passaporto")
	item := seedWorkItem(t, svc.db, "Acme")
	seedDocument(t, svc.db, item.ID, dt.ID, "1-1-p.pdf")
	seedDocument(t, svc.db, item.ID, dt.ID, "1-2-p.pdf")

	err := svc.Deactivate(bg, dt.ID)
	appErr := requireKind(t, err, KindConflict)
	assert.Equal(t, "Impossibile eliminare: tipo documento in uso", appErr.Message)
	assert.Equal(t, map[string]any{"documenti_associati": int64(2)}, appErr.Details)

	got, err := svc.Get(bg, dt.ID)
	require.NoError(t, err)
	assert.True(t, got.Attivo, "refused deactivation leaves the flag set")

	requireKind(t, svc.Deactivate(bg, 999), KindNotFound)
}

func TestDocumentTypeService_Categories(t *testing.T) {
	svc := newDocumentTypeService(t)
	cats := svc.Categories()
	assert.Contains(t, cats, "Identità")
	assert.Equal(t, "Altro", cats[len(cats)-1])
}
