package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/alertify/go-alertify-server/api/interceptors"
	"github.com/alertify/go-alertify-server/services"
	"github.com/alertify/go-alertify-server/types"
)

type RemindersApi struct {
	reminderService *services.ReminderService
	validate        *validator.Validate
}

func NewRemindersApi(reminderService *services.ReminderService) *RemindersApi {
	return &RemindersApi{
		reminderService: reminderService,
		validate:        validator.New(),
	}
}

// List the logged in users reminders
// @Security Bearer
// @Summary List the logged in users reminders
// @Tags Reminders
// @Success 200 {array} types.Reminder
// @Produce json
// @Router /api/v1/reminders [get]
func (a *RemindersApi) List(c *gin.Context) {
	userID := c.GetString(interceptors.SubjectUserID)
	reminders, err := a.reminderService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, reminders)
}

// Create a reminder
// @Security Bearer
// @Summary Create a reminder
// @Tags Reminders
// @Success 201 {object} types.Reminder
// @Failure 400 {object} api.ApiError "invalid input"
// @Accept json
// @Produce json
// @Router /api/v1/reminders [post]
func (a *RemindersApi) Create(c *gin.Context) {
	userID := c.GetString(interceptors.SubjectUserID)
	var input types.InputReminder
	if err := c.ShouldBindJSON(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "invalid input")
		return
	}
	if err := a.validate.Struct(input); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			ApiErrorf(c, http.StatusBadRequest, "%s", ValidatorErrorToUser(vErrs))
			return
		}
		ApiErrorf(c, http.StatusBadRequest, "invalid input")
		return
	}
	reminder, err := a.reminderService.Create(c.Request.Context(), userID, &input)
	if err != nil {
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reminder)
}

// Get one reminder
// @Security Bearer
// @Summary Get one reminder
// @Tags Reminders
// @Success 200 {object} types.Reminder
// @Failure 404 {object} api.ApiError "not found"
// @Produce json
// @Router /api/v1/reminders/{id} [get]
func (a *RemindersApi) Get(c *gin.Context) {
	userID := c.GetString(interceptors.SubjectUserID)
	reminder, err := a.reminderService.GetOwned(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, reminder)
}

// Update reminder fields
// @Security Bearer
// @Summary Update reminder fields
// @Description Partial update; absent fields are left unchanged
// @Tags Reminders
// @Success 200 {object} types.Reminder
// @Failure 404 {object} api.ApiError "not found"
// @Accept json
// @Produce json
// @Router /api/v1/reminders/{id} [put]
func (a *RemindersApi) Update(c *gin.Context) {
	userID := c.GetString(interceptors.SubjectUserID)
	var update types.ReminderUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "invalid input")
		return
	}
	reminder, err := a.reminderService.Update(c.Request.Context(), c.Param("id"), userID, &update)
	if err != nil {
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, reminder)
}

// Delete a reminder
// @Security Bearer
// @Summary Delete a reminder
// @Tags Reminders
// @Success 200 {object} types.OutputMessage
// @Failure 404 {object} api.ApiError "not found"
// @Produce json
// @Router /api/v1/reminders/{id} [delete]
func (a *RemindersApi) Delete(c *gin.Context) {
	userID := c.GetString(interceptors.SubjectUserID)
	if err := a.reminderService.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		ServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.OutputMessage{Message: "reminder deleted"})
}

// Export the users reminders as CSV
// @Security Bearer
// @Summary Export the users reminders as CSV
// @Tags Reminders
// @Produce text/csv
// @Router /api/v1/reminders/export [get]
func (a *RemindersApi) Export(c *gin.Context) {
	userID := c.GetString(interceptors.SubjectUserID)
	filename := fmt.Sprintf("reminders_export_%s.csv", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := a.reminderService.ExportCsv(c.Request.Context(), userID, c.Writer); err != nil {
		ServiceError(c, err)
		return
	}
}

// Import reminders from an uploaded CSV file
// @Security Bearer
// @Summary Import reminders from an uploaded CSV file
// @Description Rows without a title or with an unparsable time are skipped
// @Tags Reminders
// @Success 200 {object} services.ImportResult
// @Failure 400 {object} api.ApiError "no file or not a CSV"
// @Accept multipart/form-data
// @Produce json
// @Router /api/v1/reminders/import [post]
func (a *RemindersApi) Import(c *gin.Context) {
	userID := c.GetString(interceptors.SubjectUserID)
	fileHeader, err := c.FormFile("csv_file")
	if err != nil {
		ApiErrorf(c, http.StatusBadRequest, "no file selected")
		return
	}
	file, oErr := fileHeader.Open()
	if oErr != nil {
		ApiErrorf(c, http.StatusBadRequest, "failed to read upload")
		return
	}
	defer file.Close()

	result, iErr := a.reminderService.ImportCsv(c.Request.Context(), userID, file)
	if iErr != nil {
		ServiceError(c, iErr)
		return
	}
	c.JSON(http.StatusOK, result)
}
