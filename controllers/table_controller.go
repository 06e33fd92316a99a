package controllers

import (
	"net/http"

	"dataprotectionapi/models"
	"dataprotectionapi/pkg/logger"
	"dataprotectionapi/services"
	"dataprotectionapi/utils"

	"github.com/gin-gonic/gin"
)

var tableSrv services.TableService

// SetTableService initializes the table service instance.
// Used for dependency injection in tests to provide mock implementations.
func SetTableService(s services.TableService) {
	tableSrv = s
}

// listTables lists registered tables
// @Summary List registered tables
// @Tags Tables
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query int false "Items per page"
// @Param database_id query int false "Filter by owning database id"
// @Param name query string false "Filter by name substring"
// @Success 200 {object} PageResponse "Paginated tables"
// @Router /api/tables [get]
func listTables(c *gin.Context) {
	databaseID := utils.QueryUint(c, "database_id")
	name := c.Query("name")
	page := utils.QueryInt(c, "page", 1)
	perPage := utils.QueryInt(c, "per_page", services.DefaultPerPage)

	result, err := tableSrv.List(c.Request.Context(), databaseID, name, page, perPage)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, result)
}

// getTable fetches one registered table
// @Summary Get a registered table
// @Tags Tables
// @Produce json
// @Param id path int true "Table ID"
// @Success 200 {object} models.Table "Table"
// @Failure 404 {object} MessageResponse "table_not_found"
// @Router /api/tables/{id} [get]
func getTable(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	table, err := tableSrv.GetByID(c.Request.Context(), id)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, table)
}

// createTable registers a table
// @Summary Register a table
// @Tags Tables
// @Accept json
// @Produce json
// @Param table body models.Table true "Table"
// @Success 201 {object} CreatedResponse "Table created successfully"
// @Failure 400 {object} StandardErrorResponse "Invalid request body or validation error"
// @Failure 404 {object} MessageResponse "database_not_found"
// @Failure 409 {object} MessageResponse "table_already_exist"
// @Router /api/tables [post]
func createTable(c *gin.Context) {
	var data models.Table
	if err := c.ShouldBindJSON(&data); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if err := utils.ValidateStruct(&data); err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	logger.Debugf("Registering table %s for database %d", data.Name, data.DatabaseID)
	newObj, err := tableSrv.Create(c.Request.Context(), data)
	if err != nil {
		logger.Errorf("Failed to register table %s: %v", data.Name, err)
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusCreated, gin.H{
		"message": "Table was created successfully",
		"id":      newObj.ID,
	})
}

// updateTable renames a registered table
// @Summary Update a registered table
// @Tags Tables
// @Accept json
// @Produce json
// @Param id path int true "Table ID"
// @Param table body models.Table true "Table"
// @Success 200 {object} models.Table "Updated table"
// @Failure 404 {object} MessageResponse "table_not_found"
// @Failure 409 {object} MessageResponse "table_already_exist or table_already_anonymized"
// @Router /api/tables/{id} [put]
func updateTable(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	var data models.Table
	if err := c.ShouldBindJSON(&data); err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	updatedObj, err := tableSrv.Update(c.Request.Context(), id, data)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, updatedObj)
}

// deleteTable removes a registered table
// @Summary Delete a registered table
// @Tags Tables
// @Produce json
// @Param id path int true "Table ID"
// @Success 200 {object} MessageResponse "Table deleted successfully"
// @Failure 404 {object} MessageResponse "table_not_found"
// @Failure 409 {object} MessageResponse "table_already_anonymized"
// @Router /api/tables/{id} [delete]
func deleteTable(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	logger.Debugf("Deleting table with ID: %d", id)
	if err := tableSrv.Delete(c.Request.Context(), id); err != nil {
		logger.Errorf("Failed to delete table with ID %d: %v", id, err)
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{
		"message": "Table was deleted successfully",
	})
}

// RegisterTableRoutes registers HTTP endpoints for table catalog operations.
func RegisterTableRoutes(rg *gin.RouterGroup) {
	tables := rg.Group("/tables")
	{
		tables.GET("", listTables)
		tables.GET("/:id", getTable)
		tables.POST("", createTable)
		tables.PUT("/:id", updateTable)
		tables.DELETE("/:id", deleteTable)
	}
}
