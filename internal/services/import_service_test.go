package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"fittrack/internal/models"
	"fittrack/internal/repositories"
	"fittrack/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newImportService() (*services.ImportService, *repositories.MockEntryRepository[models.StepEntry], *repositories.MockEntryRepository[models.WeightEntry]) {
	steps := repositories.NewMockStepRepository()
	weights := repositories.NewMockWeightRepository()
	svc := services.NewImportService(services.NewStepService(steps, nil), services.NewWeightService(weights, nil))
	return svc, steps, weights
}

func TestImportService_Steps(t *testing.T) {
	svc, steps, _ := newImportService()
	ctx := context.Background()

	csv := "Date,Steps\n2024-06-10,8000\n2024-06-09,\n2024-06-08,lots\n2024-06-07,4000\n"
	res, err := svc.ImportCSV(ctx, "user-1", "steps", strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 2, res.Imported)
	require.Len(t, res.Failed, 2)
	assert.Equal(t, 3, res.Failed[0].Line)
	assert.Contains(t, res.Failed[0].Error, "Date and steps required")
	assert.Equal(t, 4, res.Failed[1].Line)
	assert.Contains(t, res.Failed[1].Error, "not a whole number")

	stored, err := steps.List(ctx, "user-1", repositories.ListFilter{})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "2024-06-10", stored[0].Date)
	assert.Equal(t, 8000, stored[0].Steps)
}

func TestImportService_Weights(t *testing.T) {
	svc, _, weights := newImportService()
	ctx := context.Background()

	csv := "date,weight,measured_at\n2024-06-10,180.5,home\n2024-06-09,181,\n"
	res, err := svc.ImportCSV(ctx, "user-1", "weights", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Empty(t, res.Failed)

	stored, err := weights.List(ctx, "user-1", repositories.ListFilter{})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	require.NotNil(t, stored[0].MeasuredAt)
	assert.Equal(t, "home", *stored[0].MeasuredAt)
	assert.Nil(t, stored[1].MeasuredAt)
}

func TestImportService_HeaderWithByteOrderMark(t *testing.T) {
	svc, steps, _ := newImportService()
	ctx := context.Background()

	res, err := svc.ImportCSV(ctx, "user-1", "steps", strings.NewReader("\ufeffdate,steps\n2024-06-10,100\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Empty(t, res.Failed)

	stored, err := steps.List(ctx, "user-1", repositories.ListFilter{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 100, stored[0].Steps)
}

func TestImportService_RejectsBadInput(t *testing.T) {
	svc, _, _ := newImportService()
	ctx := context.Background()

	for name, tc := range map[string]struct{ kind, body string }{
		"unknown kind":   {"workouts", "date,workout_name\n"},
		"empty file":     {"steps", ""},
		"missing column": {"weights", "date,steps\n2024-06-10,1\n"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ImportCSV(ctx, "user-1", tc.kind, strings.NewReader(tc.body))
			var verr *services.ValidationError
			assert.True(t, errors.As(err, &verr))
		})
	}
}
