package controllers

import (
	"net/http"

	"dataprotectionapi/pkg/logger"
	"dataprotectionapi/services/anonymization"
	"dataprotectionapi/utils"

	"github.com/gin-gonic/gin"
)

var anonymizationSrv anonymization.Service

// SetAnonymizationService initializes the anonymization service instance.
// Used for dependency injection in tests to provide mock implementations.
func SetAnonymizationService(s anonymization.Service) {
	anonymizationSrv = s
}

// createAnonymization anonymizes a registered table
// @Summary Create a new anonymization
// @Description Clones the table into the anonymized store and rewrites its declared columns with synthetic values
// @Tags Anonymization
// @Accept json
// @Produce json
// @Param table_id path int true "Table ID"
// @Success 201 {object} MessageResponse "anonymization_created"
// @Failure 400 {object} StandardErrorResponse "Invalid table ID or no_columns_declared"
// @Failure 404 {object} MessageResponse "table_not_found"
// @Failure 409 {object} MessageResponse "database_not_exists, table_not_exists or table_already_anonymized"
// @Router /api/anonymization/{table_id} [post]
func createAnonymization(c *gin.Context) {
	tableID, err := utils.ParseIDParam(c, "table_id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	logger.Debugf("Anonymization requested for table %d", tableID)
	if err := anonymizationSrv.Anonymize(c.Request.Context(), tableID); err != nil {
		logger.Errorf("Anonymization of table %d failed: %v", tableID, err)
		utils.ErrorResponse(c, err)
		return
	}
	logger.Infof("Anonymization of table %d created", tableID)
	utils.JSONResponse(c, http.StatusCreated, gin.H{
		"message": "anonymization_created",
	})
}

// deleteAnonymization reverses an anonymization
// @Summary Delete an anonymization
// @Description Copies the anonymized-store rows back into the source table and drops the store clone
// @Tags Anonymization
// @Accept json
// @Produce json
// @Param table_id path int true "Table ID"
// @Success 200 {object} MessageResponse "anonymization_deleted"
// @Failure 400 {object} StandardErrorResponse "Invalid table ID"
// @Failure 404 {object} MessageResponse "table_not_found"
// @Failure 409 {object} MessageResponse "database_not_exists, cloud_database_not_exists, table_not_anonymized or table_not_exists"
// @Router /api/anonymization/{table_id} [delete]
func deleteAnonymization(c *gin.Context) {
	tableID, err := utils.ParseIDParam(c, "table_id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	logger.Debugf("Anonymization reversal requested for table %d", tableID)
	if err := anonymizationSrv.Deanonymize(c.Request.Context(), tableID); err != nil {
		logger.Errorf("Anonymization reversal of table %d failed: %v", tableID, err)
		utils.ErrorResponse(c, err)
		return
	}
	logger.Infof("Anonymization of table %d deleted", tableID)
	utils.JSONResponse(c, http.StatusOK, gin.H{
		"message": "anonymization_deleted",
	})
}

// RegisterAnonymizationRoutes registers HTTP endpoints for anonymization operations.
func RegisterAnonymizationRoutes(rg *gin.RouterGroup) {
	anon := rg.Group("/anonymization")
	{
		anon.POST("/:table_id", createAnonymization)
		anon.DELETE("/:table_id", deleteAnonymization)
	}
}
