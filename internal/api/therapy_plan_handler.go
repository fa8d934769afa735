package api

import (
	"net/http"
	"strconv"

	"mindpath/therapy-app/internal/domain"
	"mindpath/therapy-app/internal/service"

	"github.com/gin-gonic/gin"
)

type TherapyPlanHandler struct {
	planService service.TherapyPlanService
}

func NewTherapyPlanHandler(planService service.TherapyPlanService) *TherapyPlanHandler {
	return &TherapyPlanHandler{planService: planService}
}

// --- DTOs ---

// SetWeekCompletionRequest is the body of the week toggle. A pointer keeps
// an explicit false distinguishable from a missing field.
type SetWeekCompletionRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

// --- Handler Methods ---

// CreateInitialPlan godoc
// @Summary Generate my first therapy plan
// @Description Generates a 3 to 5 week plan from the profile and completed onboarding.
// @Tags TherapyPlan
// @Produce json
// @Security BearerAuth
// @Success 201 {object} domain.TherapyPlan "Created plan"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 409 {object} gin.H "Plan already exists"
// @Failure 422 {object} gin.H "Profile or onboarding missing"
// @Failure 429 {object} gin.H "Generation quota exceeded"
// @Failure 502 {object} gin.H "AI generation failed"
// @Router /therapy-plan [post]
func (h *TherapyPlanHandler) CreateInitialPlan(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user.")
		return
	}

	plan, err := h.planService.CreateInitialPlan(c.Request.Context(), userID)
	if err != nil {
		respondWithServiceError(c, err, "Failed to create therapy plan.")
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// GetCurrentPlan godoc
// @Summary Get my current therapy plan
// @Tags TherapyPlan
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.TherapyPlan "Current plan"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 404 {object} gin.H "No plan yet"
// @Router /therapy-plan/current [get]
func (h *TherapyPlanHandler) GetCurrentPlan(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user.")
		return
	}

	plan, err := h.planService.GetCurrentPlan(c.Request.Context(), userID)
	if err != nil {
		respondWithServiceError(c, err, "Failed to retrieve therapy plan.")
		return
	}
	c.JSON(http.StatusOK, plan)
}

// GetHistory godoc
// @Summary Get previous versions of my plan
// @Description Most recent first, at most ten entries.
// @Tags TherapyPlan
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.HistorySnapshot "Archived versions"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 404 {object} gin.H "No plan yet"
// @Router /therapy-plan/history [get]
func (h *TherapyPlanHandler) GetHistory(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user.")
		return
	}

	history, err := h.planService.GetHistory(c.Request.Context(), userID)
	if err != nil {
		respondWithServiceError(c, err, "Failed to retrieve plan history.")
		return
	}
	if history == nil {
		history = []domain.HistorySnapshot{}
	}
	c.JSON(http.StatusOK, history)
}

// SetWeekCompletion godoc
// @Summary Mark a week as completed or not
// @Tags TherapyPlan
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param weekNumber path int true "Week number, starting at 1"
// @Param completion body SetWeekCompletionRequest true "Completion flag"
// @Success 200 {object} domain.TherapyPlan "Updated plan"
// @Failure 400 {object} gin.H "Invalid week number or body"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 404 {object} gin.H "Plan or week not found"
// @Router /therapy-plan/week/{weekNumber} [patch]
func (h *TherapyPlanHandler) SetWeekCompletion(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user.")
		return
	}

	weekNumber, err := strconv.Atoi(c.Param("weekNumber"))
	if err != nil || weekNumber <= 0 {
		abortWithError(c, http.StatusBadRequest, "Week number must be a positive integer.")
		return
	}

	var req SetWeekCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Field 'completed' is required and must be a boolean.")
		return
	}

	plan, err := h.planService.SetWeekCompletion(c.Request.Context(), userID, weekNumber, *req.Completed)
	if err != nil {
		respondWithServiceError(c, err, "Failed to update week.")
		return
	}
	c.JSON(http.StatusOK, plan)
}

// AdaptPlan godoc
// @Summary Adapt my plan to recent progress and mood
// @Description Regenerates the plan and archives the previous version.
// @Tags TherapyPlan
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.TherapyPlan "Adapted plan"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 404 {object} gin.H "No plan yet"
// @Failure 422 {object} gin.H "Profile or onboarding missing"
// @Failure 429 {object} gin.H "Generation quota exceeded"
// @Failure 502 {object} gin.H "AI generation failed"
// @Router /therapy-plan/adapt [post]
func (h *TherapyPlanHandler) AdaptPlan(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user.")
		return
	}

	plan, err := h.planService.AdaptPlan(c.Request.Context(), userID)
	if err != nil {
		respondWithServiceError(c, err, "Failed to adapt therapy plan.")
		return
	}
	c.JSON(http.StatusOK, plan)
}
