package controller

import (
	"net/http"

	"github.com/Itish41/WorkflowPro/models"
	services "github.com/Itish41/WorkflowPro/service"
	"github.com/gin-gonic/gin"
)

// WorkItemController serves /api/work-items.
type WorkItemController struct {
	service *services.WorkItemService
}

func NewWorkItemController(service *services.WorkItemService) *WorkItemController {
	return &WorkItemController{service: service}
}

type workItemListQuery struct {
	Stato      string `form:"stato"`
	DataInizio string `form:"data_inizio"`
	DataFine   string `form:"data_fine"`
}

type statusRequest struct {
	Stato string `json:"stato"`
}

func (wc *WorkItemController) List(c *gin.Context) {
	var q workItemListQuery
	if !bindQuery(c, &q) {
		return
	}
	filter, err := q.filter()
	if err != nil {
		_ = c.Error(err)
		return
	}

	items, err := wc.service.List(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (q workItemListQuery) filter() (models.WorkItemFilter, error) {
	var f models.WorkItemFilter
	if q.Stato != "" {
		stato, err := models.ParseWorkItemStatus(q.Stato)
		if err != nil {
			return f, services.Validation("Stato non valido")
		}
		f.Stato = stato
	}
	var err error
	if f.DataInizio, err = parseFilterDate(q.DataInizio, "data_inizio"); err != nil {
		return f, err
	}
	if f.DataFine, err = parseFilterDate(q.DataFine, "data_fine"); err != nil {
		return f, err
	}
	return f, nil
}

func (wc *WorkItemController) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	item, err := wc.service.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (wc *WorkItemController) Create(c *gin.Context) {
	var in services.WorkItemInput
	if !bindJSON(c, &in) {
		return
	}
	item, err := wc.service.Create(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (wc *WorkItemController) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in services.WorkItemInput
	if !bindJSON(c, &in) {
		return
	}
	item, err := wc.service.Update(c.Request.Context(), id, in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// UpdateStatus serves PATCH /work-items/:id and its /status and /stato aliases.
func (wc *WorkItemController) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := wc.service.UpdateStatus(c.Request.Context(), id, req.Stato)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (wc *WorkItemController) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := wc.service.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lavorazione eliminata con successo"})
}
