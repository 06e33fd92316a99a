package controllers

import (
	"net/http"

	"dataprotectionapi/models"
	"dataprotectionapi/pkg/logger"
	"dataprotectionapi/services"
	"dataprotectionapi/utils"

	"github.com/gin-gonic/gin"
)

var columnSrv services.ColumnService

// SetColumnService initializes the column service instance.
// Used for dependency injection in tests to provide mock implementations.
func SetColumnService(s services.ColumnService) {
	columnSrv = s
}

// listColumns lists declared columns
// @Summary List declared columns
// @Tags Columns
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query int false "Items per page"
// @Param table_id query int false "Filter by owning table id"
// @Param name query string false "Filter by name substring"
// @Success 200 {object} PageResponse "Paginated columns"
// @Router /api/columns [get]
func listColumns(c *gin.Context) {
	tableID := utils.QueryUint(c, "table_id")
	name := c.Query("name")
	page := utils.QueryInt(c, "page", 1)
	perPage := utils.QueryInt(c, "per_page", services.DefaultPerPage)

	result, err := columnSrv.List(c.Request.Context(), tableID, name, page, perPage)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, result)
}

// getColumn fetches one declared column
// @Summary Get a declared column
// @Tags Columns
// @Produce json
// @Param id path int true "Column ID"
// @Success 200 {object} models.Column "Column"
// @Failure 404 {object} MessageResponse "column_not_found"
// @Router /api/columns/{id} [get]
func getColumn(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	column, err := columnSrv.GetByID(c.Request.Context(), id)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, column)
}

// createColumn declares a column for anonymization
// @Summary Declare a column
// @Tags Columns
// @Accept json
// @Produce json
// @Param column body models.Column true "Column"
// @Success 201 {object} CreatedResponse "Column created successfully"
// @Failure 400 {object} MessageResponse "invalid_anonymization_type"
// @Failure 404 {object} MessageResponse "table_not_found"
// @Failure 409 {object} MessageResponse "column_already_exist or table_already_anonymized"
// @Router /api/columns [post]
func createColumn(c *gin.Context) {
	var data models.Column
	if err := c.ShouldBindJSON(&data); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if err := utils.ValidateStruct(&data); err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	logger.Debugf("Declaring column %s for table %d as %s", data.Name, data.TableID, data.AnonymizationType)
	newObj, err := columnSrv.Create(c.Request.Context(), data)
	if err != nil {
		logger.Errorf("Failed to declare column %s: %v", data.Name, err)
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusCreated, gin.H{
		"message": "Column was created successfully",
		"id":      newObj.ID,
	})
}

// updateColumn updates a declared column
// @Summary Update a declared column
// @Tags Columns
// @Accept json
// @Produce json
// @Param id path int true "Column ID"
// @Param column body models.Column true "Column"
// @Success 200 {object} models.Column "Updated column"
// @Failure 400 {object} MessageResponse "invalid_anonymization_type"
// @Failure 404 {object} MessageResponse "column_not_found"
// @Failure 409 {object} MessageResponse "column_already_exist or table_already_anonymized"
// @Router /api/columns/{id} [put]
func updateColumn(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	var data models.Column
	if err := c.ShouldBindJSON(&data); err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	updatedObj, err := columnSrv.Update(c.Request.Context(), id, data)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, updatedObj)
}

// deleteColumn removes a declared column
// @Summary Delete a declared column
// @Tags Columns
// @Produce json
// @Param id path int true "Column ID"
// @Success 200 {object} MessageResponse "Column deleted successfully"
// @Failure 404 {object} MessageResponse "column_not_found"
// @Failure 409 {object} MessageResponse "table_already_anonymized"
// @Router /api/columns/{id} [delete]
func deleteColumn(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	logger.Debugf("Deleting column with ID: %d", id)
	if err := columnSrv.Delete(c.Request.Context(), id); err != nil {
		logger.Errorf("Failed to delete column with ID %d: %v", id, err)
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{
		"message": "Column was deleted successfully",
	})
}

// RegisterColumnRoutes registers HTTP endpoints for column catalog operations.
func RegisterColumnRoutes(rg *gin.RouterGroup) {
	columns := rg.Group("/columns")
	{
		columns.GET("", listColumns)
		columns.GET("/:id", getColumn)
		columns.POST("", createColumn)
		columns.PUT("/:id", updateColumn)
		columns.DELETE("/:id", deleteColumn)
	}
}
