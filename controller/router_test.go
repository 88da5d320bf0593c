package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/Itish41/WorkflowPro/logging"
	"github.com/Itish41/WorkflowPro/models"
	services "github.com/Itish41/WorkflowPro/service"
	"github.com/Itish41/WorkflowPro/storage"
	"github.com/Itish41/WorkflowPro/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var pdfContent = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

type apiFixture struct {
	router *gin.Engine
	db     *gorm.DB
	store  *storage.LocalStore
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	db := testutil.NewDB(t)
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	logger := logging.Discard()
	svc := Services{
		WorkItems:     services.NewWorkItemService(db, logger),
		DocumentTypes: services.NewDocumentTypeService(db, logger),
		Checklists:    services.NewChecklistService(db, logger),
		Documents:     services.NewDocumentService(db, store, nil, logger),
		Users:         services.NewUserService(db, logger),
		Reconciler:    services.NewReconcileService(db, store, logger),
	}
	router := NewRouter(RouterConfig{Logger: logger, UploadDir: store.Dir()}, svc)
	return &apiFixture{router: router, db: db, store: store}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

type filePart struct {
	name        string
	contentType string
	content     []byte
}

func (f *apiFixture) upload(t *testing.T, workItemID int64, fields map[string]string, files ...filePart) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, fp := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, fp.name))
		if fp.contentType != "" {
			h.Set("Content-Type", fp.contentType)
		}
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(fp.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/work-items/%d/documents", workItemID), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func (f *apiFixture) storedFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(f.store.Dir())
	require.NoError(t, err)
	names := []string{}
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func (f *apiFixture) documentCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Document{}).Count(&n).Error)
	return n
}

func idOf(t *testing.T, body map[string]any) int64 {
	t.Helper()
	id, ok := body["id"].(float64)
	require.True(t, ok, "response has no id: %v", body)
	return int64(id)
}

func (f *apiFixture) createDocumentType(t *testing.T, nome string) int64 {
	t.Helper()
	w, body := f.do(t, http.MethodPost, "/api/document-types", gin.H{"nome": nome, "categoria": "Identità"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return idOf(t, body)
}

func TestWorkItemLifecycle(t *testing.T) {
	f := newAPI(t)

	w, item := f.do(t, http.MethodPost, "/api/work-items", gin.H{"cliente": "Acme"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "in_attesa", item["stato"])
	assert.Equal(t, "media", item["priorita"])
	assert.NotEmpty(t, item["dataCreazione"])
	assert.Nil(t, item["dataCompletamento"])
	itemID := idOf(t, item)

	w, detail := f.do(t, http.MethodGet, fmt.Sprintf("/api/work-items/%d", itemID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, detail, "documenti")
	assert.Equal(t, []any{}, detail["documenti"])

	w, item = f.do(t, http.MethodPatch, fmt.Sprintf("/api/work-items/%d/stato", itemID), gin.H{"stato": "completata"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "completata", item["stato"])
	assert.NotNil(t, item["dataCompletamento"])

	typeID := f.createDocumentType(t, "Carta d'identità")
	w, doc := f.upload(t, itemID, map[string]string{"tipo_documento_id": fmt.Sprint(typeID)},
		filePart{name: "carta.pdf", contentType: "application/pdf", content: pdfContent})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "carta.pdf", doc["nome_file"])
	assert.Equal(t, "Carta d'identità", doc["tipo_documento_nome"])
	assert.EqualValues(t, len(pdfContent), doc["dimensione_bytes"])

	w, body := f.do(t, http.MethodDelete, fmt.Sprintf("/api/work-items/%d", itemID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.EqualValues(t, 1, body["documenti"])
	assert.EqualValues(t, 409, body["status"])

	w, list := f.do(t, http.MethodGet, fmt.Sprintf("/api/work-items/%d", itemID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, list["documenti"], 1)

	w, body = f.do(t, http.MethodDelete, fmt.Sprintf("/api/documents/%d", idOf(t, doc)), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Documento eliminato con successo", body["message"])
	assert.Empty(t, f.storedFiles(t))

	w, body = f.do(t, http.MethodDelete, fmt.Sprintf("/api/work-items/%d", itemID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Lavorazione eliminata con successo", body["message"])
}

func TestWorkItemList_Filters(t *testing.T) {
	f := newAPI(t)
	for _, cliente := range []string{"Acme", "Globex"} {
		w, _ := f.do(t, http.MethodPost, "/api/work-items", gin.H{"cliente": cliente})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/work-items?stato=in_attesa", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	assert.Len(t, items, 2)

	w, body := f.do(t, http.MethodGet, "/api/work-items?stato=boh", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Stato non valido", body["error"])

	w, body = f.do(t, http.MethodGet, "/api/work-items?data_inizio=ieri", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Data non valida: data_inizio", body["error"])
}

func TestInvalidIDAndUnknownRoute(t *testing.T) {
	f := newAPI(t)

	w, body := f.do(t, http.MethodGet, "/api/work-items/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ID non valido", body["error"])

	w, body = f.do(t, http.MethodGet, "/api/work-items/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Lavorazione non trovata", body["error"])

	w, body = f.do(t, http.MethodGet, "/api/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route non trovata", body["error"])
}

func TestDocumentTypes_DuplicateAndDeactivate(t *testing.T) {
	f := newAPI(t)
	id := f.createDocumentType(t, "Visura")

	w, body := f.do(t, http.MethodPost, "/api/document-types", gin.H{"nome": "Visura"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Tipo documento già esistente", body["error"])

	w, body = f.do(t, http.MethodDelete, fmt.Sprintf("/api/document-types/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Tipo documento disattivato con successo", body["message"])

	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/document-types", nil))
	assert.JSONEq(t, `[]`, w.Body.String())

	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/document-types/categories", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var categories []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &categories))
	assert.Equal(t, models.DocumentCategories(), categories)
}

func TestUpload_Rejections(t *testing.T) {
	f := newAPI(t)
	_, item := f.do(t, http.MethodPost, "/api/work-items", gin.H{"cliente": "Acme"})
	itemID := idOf(t, item)
	typeID := fmt.Sprint(f.createDocumentType(t, "Visura"))

	tests := []struct {
		name    string
		fields  map[string]string
		files   []filePart
		status  int
		message string
	}{
		{
			name:    "oversize",
			fields:  map[string]string{"tipo_documento_id": typeID},
			files:   []filePart{{name: "big.pdf", contentType: "application/pdf", content: bytes.Repeat([]byte("a"), int(DefaultMaxUploadBytes)+1)}},
			status:  http.StatusBadRequest,
			message: "File troppo grande. Massimo 10MB",
		},
		{
			name:    "body over the request limit",
			fields:  map[string]string{"tipo_documento_id": typeID},
			files:   []filePart{{name: "scan.pdf", contentType: "application/pdf", content: bytes.Repeat([]byte("a"), 15<<20)}},
			status:  http.StatusBadRequest,
			message: "File troppo grande. Massimo 10MB",
		},
		{
			name:   "two files",
			fields: map[string]string{"tipo_documento_id": typeID},
			files: []filePart{
				{name: "a.pdf", contentType: "application/pdf", content: pdfContent},
				{name: "b.pdf", contentType: "application/pdf", content: pdfContent},
			},
			status:  http.StatusBadRequest,
			message: "Troppi file. Carica un file alla volta",
		},
		{
			name:    "declared type not allowed",
			fields:  map[string]string{"tipo_documento_id": typeID},
			files:   []filePart{{name: "x.txt", contentType: "text/plain", content: []byte("hello")}},
			status:  http.StatusBadRequest,
			message: "Tipo file non supportato. Usa: PDF, JPG, PNG, DOC, DOCX",
		},
		{
			name:    "sniffed type not allowed",
			fields:  map[string]string{"tipo_documento_id": typeID},
			files:   []filePart{{name: "x.bin", contentType: "application/octet-stream", content: []byte("plain text")}},
			status:  http.StatusBadRequest,
			message: "Tipo file non supportato. Usa: PDF, JPG, PNG, DOC, DOCX",
		},
		{
			name:    "no file",
			fields:  map[string]string{"tipo_documento_id": typeID},
			status:  http.StatusBadRequest,
			message: "Nessun file caricato",
		},
		{
			name:    "missing type",
			files:   []filePart{{name: "a.pdf", contentType: "application/pdf", content: pdfContent}},
			status:  http.StatusBadRequest,
			message: "Tipo documento obbligatorio",
		},
		{
			name:    "unknown type",
			fields:  map[string]string{"tipo_documento_id": "999"},
			files:   []filePart{{name: "a.pdf", contentType: "application/pdf", content: pdfContent}},
			status:  http.StatusNotFound,
			message: "Tipo documento non trovato",
		},
		{
			name:    "unknown uploader",
			fields:  map[string]string{"tipo_documento_id": typeID, "caricato_da_id": "42"},
			files:   []filePart{{name: "a.pdf", contentType: "application/pdf", content: pdfContent}},
			status:  http.StatusBadRequest,
			message: "Utente caricamento non trovato",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := f.upload(t, itemID, tt.fields, tt.files...)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.message, body["error"])
			assert.Empty(t, f.storedFiles(t))
			assert.Zero(t, f.documentCount(t))
		})
	}

	t.Run("unknown work item", func(t *testing.T) {
		w, body := f.upload(t, itemID+100, map[string]string{"tipo_documento_id": typeID},
			filePart{name: "a.pdf", contentType: "application/pdf", content: pdfContent})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Lavorazione non trovata", body["error"])
		assert.Empty(t, f.storedFiles(t))
	})
}

func TestUpload_SniffsGenericContentType(t *testing.T) {
	f := newAPI(t)
	_, item := f.do(t, http.MethodPost, "/api/work-items", gin.H{"numero": "L-1"})
	typeID := fmt.Sprint(f.createDocumentType(t, "Visura"))

	w, doc := f.upload(t, idOf(t, item), map[string]string{"tipo_documento_id": typeID},
		filePart{name: `C:\scans\visura.pdf`, content: pdfContent})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", doc["mime_type"])
	assert.Equal(t, "visura.pdf", doc["nome_file"])
}

func TestUpload_NormalizesJPGContentType(t *testing.T) {
	f := newAPI(t)
	_, item := f.do(t, http.MethodPost, "/api/work-items", gin.H{"cliente": "Acme"})
	typeID := fmt.Sprint(f.createDocumentType(t, "Foto documento"))

	jfif := append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, bytes.Repeat([]byte{0x00}, 32)...)
	w, doc := f.upload(t, idOf(t, item), map[string]string{"tipo_documento_id": typeID},
		filePart{name: "foto.jpg", contentType: "image/jpg", content: jfif})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "image/jpeg", doc["mime_type"])
	assert.Len(t, f.storedFiles(t), 1)
}

func TestDocumentDownload(t *testing.T) {
	f := newAPI(t)
	_, item := f.do(t, http.MethodPost, "/api/work-items", gin.H{"cliente": "Acme"})
	itemID := idOf(t, item)
	typeID := fmt.Sprint(f.createDocumentType(t, "Visura"))

	_, doc := f.upload(t, itemID, map[string]string{"tipo_documento_id": typeID},
		filePart{name: "visura camerale.pdf", contentType: "application/pdf", content: pdfContent})
	docID := idOf(t, doc)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/documents/%d/download", docID), nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pdfContent, w.Body.Bytes())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="visura camerale.pdf"`, w.Header().Get("Content-Disposition"))

	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/"+doc["path_file"].(string), nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/work-items/%d/documents?tipo_documento_id=%s", itemID, typeID), nil))
	require.Equal(t, http.StatusOK, w.Code)
	var docs []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &docs))
	assert.Len(t, docs, 1)

	require.NoError(t, os.Remove(filepath.Join(f.store.Dir(), doc["path_file"].(string))))
	w2, body := f.do(t, http.MethodGet, fmt.Sprintf("/api/documents/%d/download", docID), nil)
	assert.Equal(t, http.StatusNotFound, w2.Code)
	assert.Equal(t, "File fisico non trovato", body["error"])

	w2, body = f.do(t, http.MethodDelete, fmt.Sprintf("/api/documents/%d", docID), nil)
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, "Documento eliminato con successo", body["message"])

	w2, body = f.do(t, http.MethodGet, fmt.Sprintf("/api/documents/%d", docID), nil)
	assert.Equal(t, http.StatusNotFound, w2.Code)
	assert.Equal(t, "Documento non trovato", body["error"])
}

func TestDocumentSearch(t *testing.T) {
	f := newAPI(t)

	w, body := f.do(t, http.MethodGet, "/api/documents/search?q=%20", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Parametro di ricerca obbligatorio", body["error"])

	w, body = f.do(t, http.MethodGet, "/api/documents/search?q=visura", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Ricerca non disponibile", body["error"])
}

func TestChecklistRoutes(t *testing.T) {
	f := newAPI(t)

	w, cl := f.do(t, http.MethodPost, "/api/checklists", gin.H{"nome": "Apertura pratica"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	clID := idOf(t, cl)

	w, q := f.do(t, http.MethodPost, fmt.Sprintf("/api/checklists/%d/questions", clID), gin.H{
		"domanda":             "Documento di identità valido?",
		"tipo_risposta":       "Si/No",
		"documenti_richiesti": []string{" Carta d'identità ", ""},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.EqualValues(t, 1, q["ordine"])
	assert.Equal(t, []any{"Carta d'identità"}, q["documenti_richiesti"])
	qID := idOf(t, q)

	w, q = f.do(t, http.MethodPut, fmt.Sprintf("/api/questions/%d", qID), gin.H{"domanda": "Identità verificata?"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Identità verificata?", q["domanda"])

	w, body := f.do(t, http.MethodPost, fmt.Sprintf("/api/checklists/%d/questions", clID), gin.H{"domanda": " "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Testo domanda obbligatorio", body["error"])

	w, body = f.do(t, http.MethodDelete, fmt.Sprintf("/api/checklists/%d", clID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Checklist eliminata con successo", body["message"])

	w, body = f.do(t, http.MethodDelete, fmt.Sprintf("/api/questions/%d", qID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Domanda non trovata", body["error"])
}

func TestUserRoutes(t *testing.T) {
	f := newAPI(t)

	w, body := f.do(t, http.MethodPost, "/api/users", gin.H{"fullName": "Mario Rossi", "email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email non valida", body["error"])

	w, u := f.do(t, http.MethodPost, "/api/users", gin.H{"fullName": "Mario Rossi", "email": "mario@example.com"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "user", u["role"])
	assert.Equal(t, true, u["active"])

	w, body = f.do(t, http.MethodPost, "/api/users", gin.H{"fullName": "Mario Bis", "email": "mario@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Email già esistente", body["error"])

	w, item := f.do(t, http.MethodPost, "/api/work-items", gin.H{"cliente": "Acme", "assegnatoA": fmt.Sprint(idOf(t, u))})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Mario Rossi", item["assegnatoNome"])

	w, body = f.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", idOf(t, u)), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Utente eliminato con successo", body["message"])

	_, item = f.do(t, http.MethodGet, fmt.Sprintf("/api/work-items/%d", idOf(t, item)), nil)
	assert.Nil(t, item["assegnatoA"])
}

func TestMaintenanceOrphans(t *testing.T) {
	f := newAPI(t)
	_, err := f.store.Put(context.Background(), "stray.pdf", bytes.NewReader(pdfContent), int64(len(pdfContent)), "application/pdf")
	require.NoError(t, err)

	w, report := f.do(t, http.MethodGet, "/api/maintenance/orphans", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"stray.pdf"}, report["orphanFiles"])
	assert.Equal(t, []any{}, report["removed"])

	w, report = f.do(t, http.MethodPost, "/api/maintenance/orphans/sweep", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"stray.pdf"}, report["removed"])
	assert.Empty(t, f.storedFiles(t))
}

func TestHealthAndInfo(t *testing.T) {
	f := newAPI(t)

	w, body := f.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", body["status"])
	assert.Contains(t, body, "uptime")
	assert.Contains(t, body, "timestamp")

	w, body = f.do(t, http.MethodGet, "/api", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Workflow Pro API", body["message"])
	assert.Equal(t, APIVersion, body["version"])
}
