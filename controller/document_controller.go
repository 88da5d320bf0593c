package controller

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	services "github.com/Itish41/WorkflowPro/service"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// DefaultMaxUploadBytes is the largest accepted file.
const DefaultMaxUploadBytes int64 = 10 << 20

// multipartOverhead leaves room for the boundaries and form fields around
// the file part.
const multipartOverhead int64 = 1 << 20

// mimeAliases maps non-standard declared types to their canonical form.
var mimeAliases = map[string]string{
	"image/jpg":   "image/jpeg",
	"image/pjpeg": "image/jpeg",
}

var allowedMIMETypes = map[string]struct{}{
	"application/pdf":    {},
	"image/jpeg":         {},
	"image/png":          {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
}

// DocumentController manages document uploads, downloads and search.
type DocumentController struct {
	service        *services.DocumentService
	maxUploadBytes int64
}

// NewDocumentController caps uploads at maxUploadBytes, or at
// DefaultMaxUploadBytes when it is not positive.
func NewDocumentController(service *services.DocumentService, maxUploadBytes int64) *DocumentController {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &DocumentController{service: service, maxUploadBytes: maxUploadBytes}
}

type searchQuery struct {
	Q string `form:"q" binding:"notblank"`
}

// Upload handles POST /work-items/:id/documents. Size, count and type are
// checked before the service sees the file.
func (dc *DocumentController) Upload(c *gin.Context) {
	workItemID, ok := parseID(c, "id")
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, dc.maxUploadBytes+multipartOverhead)
	if err := c.Request.ParseMultipartForm(dc.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			_ = c.Error(dc.tooLarge())
			return
		}
		_ = c.Error(services.Validation("Richiesta multipart non valida"))
		return
	}
	defer func() {
		_ = c.Request.MultipartForm.RemoveAll()
	}()

	in, err := dc.uploadInput(c.Request.MultipartForm)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if in.File != nil {
		if closer, ok := in.File.Body.(io.Closer); ok {
			defer closer.Close()
		}
	}

	doc, err := dc.service.Upload(c.Request.Context(), workItemID, in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (dc *DocumentController) tooLarge() error {
	return services.Validation(fmt.Sprintf("File troppo grande. Massimo %dMB", dc.maxUploadBytes>>20))
}

func (dc *DocumentController) uploadInput(form *multipart.Form) (services.UploadInput, error) {
	var in services.UploadInput

	var headers []*multipart.FileHeader
	for _, hs := range form.File {
		headers = append(headers, hs...)
	}
	if len(headers) > 1 {
		return in, services.Validation("Troppi file. Carica un file alla volta")
	}

	var err error
	if in.TipoDocumentoID, err = parseOptionalID(formValue(form, "tipo_documento_id"), "Tipo documento non valido"); err != nil {
		return in, err
	}
	if in.CaricatoDaID, err = parseOptionalID(formValue(form, "caricato_da_id"), "Utente caricamento non valido"); err != nil {
		return in, err
	}

	if len(headers) == 0 {
		return in, nil
	}
	fh := headers[0]
	if fh.Size > dc.maxUploadBytes {
		return in, dc.tooLarge()
	}

	f, err := fh.Open()
	if err != nil {
		return in, services.Internal("Errore lettura file caricato", err)
	}
	contentType, err := detectContentType(fh, f)
	if err != nil {
		f.Close()
		return in, err
	}
	in.File = &services.UploadFile{
		Name:        fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
		Body:        f,
	}
	return in, nil
}

// detectContentType trusts a whitelisted declared type and sniffs the
// content otherwise.
func detectContentType(fh *multipart.FileHeader, f multipart.File) (string, error) {
	declared, _, _ := mime.ParseMediaType(fh.Header.Get("Content-Type"))
	if canonical, ok := mimeAliases[declared]; ok {
		declared = canonical
	}
	if _, ok := allowedMIMETypes[declared]; ok {
		return declared, nil
	}
	if declared != "" && declared != "application/octet-stream" {
		return "", unsupportedType()
	}

	detected, err := mimetype.DetectReader(f)
	if err != nil {
		return "", services.Internal("Errore lettura file caricato", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", services.Internal("Errore lettura file caricato", err)
	}
	for m := detected; m != nil; m = m.Parent() {
		if _, ok := allowedMIMETypes[m.String()]; ok {
			return m.String(), nil
		}
	}
	return "", unsupportedType()
}

func unsupportedType() error {
	return services.Validation("Tipo file non supportato. Usa: PDF, JPG, PNG, DOC, DOCX")
}

func formValue(form *multipart.Form, key string) string {
	if vs := form.Value[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func (dc *DocumentController) ListByWorkItem(c *gin.Context) {
	workItemID, ok := parseID(c, "id")
	if !ok {
		return
	}
	typeID, err := parseOptionalID(c.Query("tipo_documento_id"), "Tipo documento non valido")
	if err != nil {
		_ = c.Error(err)
		return
	}
	docs, err := dc.service.ListByWorkItem(c.Request.Context(), workItemID, typeID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (dc *DocumentController) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	doc, err := dc.service.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Download streams the stored file under its original name.
func (dc *DocumentController) Download(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	doc, body, size, err := dc.service.Download(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer body.Close()

	contentType := doc.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": doc.NomeFile})
	if disposition == "" {
		disposition = "attachment"
	}
	c.DataFromReader(http.StatusOK, size, contentType, body, map[string]string{
		"Content-Disposition": disposition,
	})
}

func (dc *DocumentController) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := dc.service.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Documento eliminato con successo"})
}

// Search serves GET /documents/search?q=.
func (dc *DocumentController) Search(c *gin.Context) {
	var q searchQuery
	if !bindQuery(c, &q) {
		return
	}
	hits, err := dc.service.Search(c.Request.Context(), strings.TrimSpace(q.Q))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": hits, "total": len(hits)})
}
