package controller

import (
	"net/http"

	services "github.com/Itish41/WorkflowPro/service"
	"github.com/gin-gonic/gin"
)

type DocumentTypeController struct {
	service *services.DocumentTypeService
}

func NewDocumentTypeController(service *services.DocumentTypeService) *DocumentTypeController {
	return &DocumentTypeController{service: service}
}

// List returns active types only.
func (dc *DocumentTypeController) List(c *gin.Context) {
	types, err := dc.service.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types)
}

func (dc *DocumentTypeController) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, dc.service.Categories())
}

func (dc *DocumentTypeController) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	dt, err := dc.service.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dt)
}

func (dc *DocumentTypeController) Create(c *gin.Context) {
	var in services.DocumentTypeInput
	if !bindJSON(c, &in) {
		return
	}
	dt, err := dc.service.Create(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, dt)
}

func (dc *DocumentTypeController) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in services.DocumentTypeInput
	if !bindJSON(c, &in) {
		return
	}
	dt, err := dc.service.Update(c.Request.Context(), id, in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dt)
}

// Delete is a soft delete.
func (dc *DocumentTypeController) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := dc.service.Deactivate(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tipo documento disattivato con successo"})
}
