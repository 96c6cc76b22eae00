package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrientationStatus_RecordCompletion(t *testing.T) {
	s := NewOrientationStatus()

	s = s.RecordCompletion(CategoryMain, 1)
	assert.False(t, s.Main.IsCompleted)
	assert.Len(t, s.Main.CompletedTasks, 1)

	s = s.RecordCompletion(CategoryMain, 2)
	assert.True(t, s.Main.IsCompleted)
	assert.False(t, s.OverallCompleted)
}

func TestOrientationStatus_RecordCompletion_Idempotent(t *testing.T) {
	s := NewOrientationStatus()

	once := s.RecordCompletion(CategorySocial, 7)
	twice := once.RecordCompletion(CategorySocial, 7)

	assert.Equal(t, once, twice)
	assert.Len(t, twice.Social.CompletedTasks, 1)
}

func TestOrientationStatus_RecordCompletion_DoesNotMutateReceiver(t *testing.T) {
	s := NewOrientationStatus()
	_ = s.RecordCompletion(CategoryAI, 1)

	assert.Empty(t, s.AI.CompletedTasks)
	assert.False(t, s.AI.IsCompleted)
}

func TestOrientationStatus_AlreadyCompleteCategoryIsNoopBeyondThreshold(t *testing.T) {
	s := NewOrientationStatus()
	s = s.RecordCompletion(CategoryTesting, 1)
	s = s.RecordCompletion(CategoryTesting, 2)
	require.True(t, s.Testing.IsCompleted)

	// A third distinct task is still recorded but completion flags are stable.
	s2 := s.RecordCompletion(CategoryTesting, 3)
	assert.True(t, s2.Testing.IsCompleted)
	assert.False(t, s2.OverallCompleted)
}

func TestOrientationStatus_OverallCompletedAfterTenthTask(t *testing.T) {
	s := NewOrientationStatus()

	var taskID int64
	for _, c := range Categories {
		for i := 0; i < OrientationCategoryThreshold; i++ {
			taskID++
			assert.False(t, s.OverallCompleted, "must stay incomplete before the 10th task")
			s = s.RecordCompletion(c, taskID)
		}
	}

	assert.True(t, s.OverallCompleted)
	assert.False(t, s.InOrientation())
}

func TestOrientationStatus_OverallRequiresAllFiveCategories(t *testing.T) {
	s := NewOrientationStatus()

	// Two tasks in four categories only.
	var taskID int64
	for _, c := range []Category{CategoryMain, CategorySocial, CategorySurveys, CategoryTesting} {
		taskID++
		s = s.RecordCompletion(c, taskID)
		taskID++
		s = s.RecordCompletion(c, taskID)
	}

	assert.False(t, s.OverallCompleted)
	assert.True(t, s.InOrientation())
}

func TestOrientationStatus_JSONShape(t *testing.T) {
	s := NewOrientationStatus()
	s = s.RecordCompletion(CategoryMain, 3)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, key := range []string{"main", "social", "surveys", "testing", "ai", "overallCompleted"} {
		assert.Contains(t, decoded, key)
	}

	var roundTrip OrientationStatus
	require.NoError(t, json.Unmarshal(data, &roundTrip))
	assert.Equal(t, s, roundTrip)
}
