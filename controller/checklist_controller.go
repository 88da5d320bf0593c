package controller

import (
	"net/http"

	services "github.com/Itish41/WorkflowPro/service"
	"github.com/gin-gonic/gin"
)

// ChecklistController serves checklist templates and their questions.
type ChecklistController struct {
	service *services.ChecklistService
}

func NewChecklistController(service *services.ChecklistService) *ChecklistController {
	return &ChecklistController{service: service}
}

func (cc *ChecklistController) List(c *gin.Context) {
	lists, err := cc.service.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, lists)
}

func (cc *ChecklistController) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	cl, err := cc.service.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, cl)
}

func (cc *ChecklistController) Create(c *gin.Context) {
	var in services.ChecklistInput
	if !bindJSON(c, &in) {
		return
	}
	cl, err := cc.service.Create(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, cl)
}

func (cc *ChecklistController) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in services.ChecklistInput
	if !bindJSON(c, &in) {
		return
	}
	cl, err := cc.service.Update(c.Request.Context(), id, in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, cl)
}

func (cc *ChecklistController) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := cc.service.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Checklist eliminata con successo"})
}

func (cc *ChecklistController) ListQuestions(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	questions, err := cc.service.ListQuestions(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

func (cc *ChecklistController) CreateQuestion(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in services.QuestionInput
	if !bindJSON(c, &in) {
		return
	}
	q, err := cc.service.CreateQuestion(c.Request.Context(), id, in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

func (cc *ChecklistController) UpdateQuestion(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in services.QuestionInput
	if !bindJSON(c, &in) {
		return
	}
	q, err := cc.service.UpdateQuestion(c.Request.Context(), id, in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (cc *ChecklistController) DeleteQuestion(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := cc.service.DeleteQuestion(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Domanda eliminata con successo"})
}
