package controller

import (
	"net/http"

	services "github.com/Itish41/WorkflowPro/service"
	"github.com/gin-gonic/gin"
)

// MaintenanceController exposes the storage reconciliation report.
type MaintenanceController struct {
	reconciler *services.ReconcileService
}

func NewMaintenanceController(reconciler *services.ReconcileService) *MaintenanceController {
	return &MaintenanceController{reconciler: reconciler}
}

func (mc *MaintenanceController) Orphans(c *gin.Context) {
	mc.reconcile(c, false)
}

func (mc *MaintenanceController) Sweep(c *gin.Context) {
	mc.reconcile(c, true)
}

func (mc *MaintenanceController) reconcile(c *gin.Context, remove bool) {
	report, err := mc.reconciler.Reconcile(c.Request.Context(), remove)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, report)
}
