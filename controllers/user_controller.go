package controllers

import (
	"net/http"

	"dataprotectionapi/models"
	"dataprotectionapi/pkg/logger"
	"dataprotectionapi/services"
	"dataprotectionapi/utils"

	"github.com/gin-gonic/gin"
)

var userSrv services.UserService

// SetUserService initializes the user service instance.
// Used for dependency injection in tests to provide mock implementations.
func SetUserService(s services.UserService) {
	userSrv = s
}

// listUsers lists users
// @Summary List users
// @Tags Users
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query int false "Items per page"
// @Param name query string false "Filter by name substring"
// @Success 200 {object} PageResponse "Paginated users"
// @Router /api/users [get]
func listUsers(c *gin.Context) {
	name := c.Query("name")
	page := utils.QueryInt(c, "page", 1)
	perPage := utils.QueryInt(c, "per_page", services.DefaultPerPage)

	result, err := userSrv.List(c.Request.Context(), name, page, perPage)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, result)
}

// getUser fetches one user
// @Summary Get a user
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User "User"
// @Failure 404 {object} MessageResponse "user_not_found"
// @Router /api/users/{id} [get]
func getUser(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	user, err := userSrv.GetByID(c.Request.Context(), id)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, user)
}

// createUser creates a user
// @Summary Create a user
// @Tags Users
// @Accept json
// @Produce json
// @Param user body models.User true "User"
// @Success 201 {object} CreatedResponse "User created successfully"
// @Failure 400 {object} StandardErrorResponse "Invalid request body or validation error"
// @Failure 409 {object} MessageResponse "user_already_exist"
// @Router /api/users [post]
func createUser(c *gin.Context) {
	var data models.User
	if err := c.ShouldBindJSON(&data); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if err := utils.ValidateStruct(&data); err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	logger.Debugf("Creating user %s", data.Name)
	newObj, err := userSrv.Create(c.Request.Context(), data)
	if err != nil {
		logger.Errorf("Failed to create user %s: %v", data.Name, err)
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusCreated, gin.H{
		"message": "User was created successfully",
		"id":      newObj.ID,
	})
}

// deleteUser removes a user
// @Summary Delete a user
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} MessageResponse "User deleted successfully"
// @Failure 404 {object} MessageResponse "user_not_found"
// @Router /api/users/{id} [delete]
func deleteUser(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	logger.Debugf("Deleting user with ID: %d", id)
	if err := userSrv.Delete(c.Request.Context(), id); err != nil {
		logger.Errorf("Failed to delete user with ID %d: %v", id, err)
		utils.ErrorResponse(c, err)
		return
	}
	utils.JSONResponse(c, http.StatusOK, gin.H{
		"message": "User was deleted successfully",
	})
}

// RegisterUserRoutes registers HTTP endpoints for user catalog operations.
func RegisterUserRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	{
		users.GET("", listUsers)
		users.GET("/:id", getUser)
		users.POST("", createUser)
		users.DELETE("/:id", deleteUser)
	}
}
