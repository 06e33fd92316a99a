package controllers

import (
	"net/http"

	"dataprotectionapi/models"
	"dataprotectionapi/pkg/logger"
	"dataprotectionapi/repository"
	"dataprotectionapi/services"
	"dataprotectionapi/utils"

	"github.com/gin-gonic/gin"
)

var databaseSrv services.DatabaseService

// SetDatabaseService initializes the database service instance.
// Used for dependency injection in tests to provide mock implementations.
func SetDatabaseService(s services.DatabaseService) {
	databaseSrv = s
}

// listDatabases lists registered databases
// @Summary List registered databases
// @Description Returns a paginated listing of registered database connections, optionally filtered
// @Tags Databases
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query int false "Items per page"
// @Param valid_database_id query int false "Filter by engine type id"
// @Param username query string false "Filter by username substring"
// @Param host query string false "Filter by host substring"
// @Param port query int false "Filter by port"
// @Param name query string false "Filter by name substring"
// @Success 200 {object} PageResponse "Paginated databases"
// @Router /api/databases [get]
func listDatabases(c *gin.Context) {
	filter := repository.DatabaseFilter{
		ValidDatabaseID: utils.QueryUint(c, "valid_database_id"),
		Username:        c.Query("username"),
		Host:            c.Query("host"),
		Port:            utils.QueryInt(c, "port", 0),
		Name:            c.Query("name"),
	}
	page := utils.QueryInt(c, "page", 1)
	perPage := utils.QueryInt(c, "per_page", services.DefaultPerPage)

	result, err := databaseSrv.List(c.Request.Context(), filter, page, perPage)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, result)
}

// getDatabase fetches one registered database
// @Summary Get a registered database
// @Tags Databases
// @Produce json
// @Param id path int true "Database ID"
// @Success 200 {object} models.Database "Database"
// @Failure 404 {object} MessageResponse "database_not_found"
// @Router /api/databases/{id} [get]
func getDatabase(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	database, err := databaseSrv.GetByID(c.Request.Context(), id)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, database)
}

// createDatabase registers a database connection
// @Summary Register a database connection
// @Tags Databases
// @Accept json
// @Produce json
// @Param database body models.Database true "Database connection"
// @Success 201 {object} CreatedResponse "Database created successfully"
// @Failure 400 {object} StandardErrorResponse "Invalid request body or validation error"
// @Failure 404 {object} MessageResponse "user_not_found or valid_database_not_found"
// @Failure 409 {object} MessageResponse "database_already_exist"
// @Router /api/databases [post]
func createDatabase(c *gin.Context) {
	var data models.Database
	if err := c.ShouldBindJSON(&data); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if err := utils.ValidateStruct(&data); err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	logger.Debugf("Registering database %s@%s:%d/%s", data.Username, data.Host, data.Port, data.Name)
	newObj, err := databaseSrv.Create(c.Request.Context(), data)
	if err != nil {
		logger.Errorf("Failed to register database %s: %v", data.Name, err)
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusCreated, gin.H{
		"message": "Database was created successfully",
		"id":      newObj.ID,
	})
}

// updateDatabase updates a registered database connection
// @Summary Update a registered database
// @Tags Databases
// @Accept json
// @Produce json
// @Param id path int true "Database ID"
// @Param database body models.Database true "Database connection"
// @Success 200 {object} models.Database "Updated database"
// @Failure 404 {object} MessageResponse "database_not_found"
// @Failure 409 {object} MessageResponse "database_already_exist"
// @Router /api/databases/{id} [put]
func updateDatabase(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	var data models.Database
	if err := c.ShouldBindJSON(&data); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if err := utils.ValidateStruct(&data); err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	updatedObj, err := databaseSrv.Update(c.Request.Context(), id, data)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, updatedObj)
}

// deleteDatabase removes a registered database connection
// @Summary Delete a registered database
// @Tags Databases
// @Produce json
// @Param id path int true "Database ID"
// @Success 200 {object} MessageResponse "Database deleted successfully"
// @Failure 404 {object} MessageResponse "database_not_found"
// @Router /api/databases/{id} [delete]
func deleteDatabase(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	logger.Debugf("Deleting database with ID: %d", id)
	if err := databaseSrv.Delete(c.Request.Context(), id); err != nil {
		logger.Errorf("Failed to delete database with ID %d: %v", id, err)
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{
		"message": "Database was deleted successfully",
	})
}

// RegisterDatabaseRoutes registers HTTP endpoints for database catalog operations.
func RegisterDatabaseRoutes(rg *gin.RouterGroup) {
	databases := rg.Group("/databases")
	{
		databases.GET("", listDatabases)
		databases.GET("/:id", getDatabase)
		databases.POST("", createDatabase)
		databases.PUT("/:id", updateDatabase)
		databases.DELETE("/:id", deleteDatabase)
	}
}
