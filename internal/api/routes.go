package api

import (
	"net/http"

	"mindpath/therapy-app/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	planService service.TherapyPlanService,
	moodService service.MoodService,
) {
	planHandler := NewTherapyPlanHandler(planService)
	moodHandler := NewMoodHandler(moodService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			c.JSON(http.StatusOK, gin.H{"userId": userID.Hex()})
		})

		// --- Therapy Plan Routes ---
		planGroup := protected.Group("/therapy-plan")
		{
			planGroup.POST("", planHandler.CreateInitialPlan)
			planGroup.GET("/current", planHandler.GetCurrentPlan)
			planGroup.GET("/history", planHandler.GetHistory)
			planGroup.PATCH("/week/:weekNumber", planHandler.SetWeekCompletion)
			// Regenerates through the AI; quota applies
			planGroup.POST("/adapt", planHandler.AdaptPlan)
		}

		// --- Mood Routes ---
		moodGroup := protected.Group("/moods")
		{
			moodGroup.POST("", moodHandler.RecordMood)
			moodGroup.GET("", moodHandler.GetRecentMoods)
			moodGroup.POST("/media/upload-url", moodHandler.GetMediaUploadURL)
			moodGroup.POST("/media", moodHandler.RecordMoodFromMedia)
		}
	}
}
