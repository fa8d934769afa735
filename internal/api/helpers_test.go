package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"mindpath/therapy-app/internal/domain"
	"mindpath/therapy-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

type stubPlanService struct {
	plan      *domain.TherapyPlan
	history   []domain.HistorySnapshot
	err       error
	gotUser   primitive.ObjectID
	gotWeek   int
	gotStatus bool
}

func (s *stubPlanService) CreateInitialPlan(_ context.Context, userID primitive.ObjectID) (*domain.TherapyPlan, error) {
	s.gotUser = userID
	return s.plan, s.err
}

func (s *stubPlanService) GetCurrentPlan(_ context.Context, userID primitive.ObjectID) (*domain.TherapyPlan, error) {
	s.gotUser = userID
	return s.plan, s.err
}

func (s *stubPlanService) GetHistory(_ context.Context, userID primitive.ObjectID) ([]domain.HistorySnapshot, error) {
	s.gotUser = userID
	return s.history, s.err
}

func (s *stubPlanService) SetWeekCompletion(_ context.Context, userID primitive.ObjectID, weekNumber int, completed bool) (*domain.TherapyPlan, error) {
	s.gotUser, s.gotWeek, s.gotStatus = userID, weekNumber, completed
	return s.plan, s.err
}

func (s *stubPlanService) AdaptPlan(_ context.Context, userID primitive.ObjectID) (*domain.TherapyPlan, error) {
	s.gotUser = userID
	return s.plan, s.err
}

type stubMoodService struct {
	mood     *domain.MoodObservation
	moods    []domain.MoodObservation
	upload   *service.UploadURLResponse
	err      error
	gotScore int
	gotKind  domain.MediaKind
	gotKey   string
}

func (s *stubMoodService) RecordMood(_ context.Context, _ primitive.ObjectID, score int, _ string) (*domain.MoodObservation, error) {
	s.gotScore = score
	return s.mood, s.err
}

func (s *stubMoodService) RecentMoods(context.Context, primitive.ObjectID) ([]domain.MoodObservation, error) {
	return s.moods, s.err
}

func (s *stubMoodService) RequestMediaUpload(_ context.Context, _ primitive.ObjectID, kind domain.MediaKind, _ string) (*service.UploadURLResponse, error) {
	s.gotKind = kind
	return s.upload, s.err
}

func (s *stubMoodService) RecordMoodFromMedia(_ context.Context, _ primitive.ObjectID, kind domain.MediaKind, objectKey string) (*domain.MoodObservation, error) {
	s.gotKind, s.gotKey = kind, objectKey
	return s.mood, s.err
}

func newTestRouter(plans service.TherapyPlanService, moods service.MoodService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, testSecret, plans, moods)
	return router
}

func signToken(t *testing.T, uid string, expiresAt time.Time) string {
	t.Helper()
	claims := jwtClaims{
		UserID:           uid,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(expiresAt)},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, router *gin.Engine, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func samplePlan(userID primitive.ObjectID) *domain.TherapyPlan {
	return &domain.TherapyPlan{
		ID:     primitive.NewObjectID(),
		UserID: userID,
		PlanContent: domain.PlanContent{
			RecommendedApproach: "CBT",
			Summary:             "summary",
			WeeklyPlan: []domain.WeekEntry{
				{WeekNumber: 1, Theme: "t", Goal: "g", Exercises: []domain.Exercise{{Title: "e", Steps: []string{"s"}}}},
			},
		},
		History: []domain.HistorySnapshot{},
	}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
