package mongo

import (
	"testing"
	"time"

	"mindpath/therapy-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestReconcileUpdate_Shape(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	content := domain.PlanContent{
		RecommendedApproach: "ACT",
		Summary:             "adapted",
		WeeklyPlan:          []domain.WeekEntry{{WeekNumber: 1, Theme: "t", Goal: "g"}},
	}
	snap := domain.HistorySnapshot{ReasonForUpdate: "periodic", ArchivedAt: now}

	update := reconcileUpdate(content, snap, now)

	set, ok := update["$set"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, "ACT", set["recommendedApproach"])
	assert.Equal(t, "adapted", set["summary"])
	assert.Equal(t, content.WeeklyPlan, set["weeklyPlan"])
	assert.Equal(t, now, set["updatedAt"])
	assert.NotContains(t, set, "history")

	push, ok := update["$push"].(bson.M)
	require.True(t, ok)
	history, ok := push["history"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, 0, history["$position"])
	assert.Equal(t, domain.MaxHistory, history["$slice"])
	assert.Equal(t, []domain.HistorySnapshot{snap}, history["$each"])
}

func TestReconcileUpdate_MarshalsToBSON(t *testing.T) {
	update := reconcileUpdate(domain.PlanContent{
		RecommendedApproach: "CBT",
		Summary:             "s",
		WeeklyPlan:          []domain.WeekEntry{{WeekNumber: 1}},
	}, domain.HistorySnapshot{}, time.Now().UTC())

	_, err := bson.Marshal(update)
	require.NoError(t, err)
}
