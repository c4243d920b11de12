package control

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fm-control/internal/config"
	"github.com/ukydev/fm-control/internal/events"
	"github.com/ukydev/fm-control/internal/models"
	"github.com/ukydev/fm-control/internal/sheet"
)

func TestMarkChecklistOK(t *testing.T) {
	f := newFixture(t, config.DefaultRoster())
	f.seed(testAssets(), nil)
	f.remote.On("SubmitChecklist", mock.Anything, mock.MatchedBy(func(w sheet.ChecklistWrite) bool {
		return w.AssetTag == "AC-102" && w.Technician == "Bilal" &&
			w.Category == models.DailyRoutine && w.At.Equal(fixedNow)
	})).Return(nil).Once()

	res, err := f.ctrl.MarkChecklistOK(context.Background(), 2, "Bilal", "")
	require.NoError(t, err)
	assert.Equal(t, models.ChecklistResult{Key: "2-Daily Routine", Synced: true}, res)
	assert.True(t, f.ctrl.IsChecked(2, models.DailyRoutine))
	assert.Empty(t, f.ctrl.PendingChecks())
	f.publisher.AssertCalled(t, "Publish", events.TopicChecklists, events.ChecklistLogged, mock.Anything)

	again, err := f.ctrl.MarkChecklistOK(context.Background(), 2, "Bilal", models.DailyRoutine)
	require.NoError(t, err)
	assert.True(t, again.AlreadyChecked)
	assert.True(t, again.Synced)
	f.remote.AssertNumberOfCalls(t, "SubmitChecklist", 1)
	f.journal.AssertNotCalled(t, "RecordPending", mock.Anything, mock.Anything)
}

func TestMarkChecklistOK_RemoteFailureKeepsLocalCheck(t *testing.T) {
	for name, remoteErr := range map[string]error{
		"transport": errors.New("dial tcp: connection refused"),
		"rejected":  sheet.ErrRejected,
		"malformed": sheet.ErrMalformed,
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, config.DefaultRoster())
			f.seed(testAssets(), nil)
			f.remote.On("SubmitChecklist", mock.Anything, mock.Anything).Return(remoteErr).Once()

			res, err := f.ctrl.MarkChecklistOK(context.Background(), 5, "Taimoor", models.QuarterlyAudit)
			require.NoError(t, err)
			assert.False(t, res.Synced)
			assert.False(t, res.AlreadyChecked)
			assert.True(t, f.ctrl.IsChecked(5, models.QuarterlyAudit))

			pending := f.ctrl.PendingChecks()
			require.Len(t, pending, 1)
			assert.Equal(t, "5-Quarterly Audit", pending[0].Key)
			assert.Equal(t, "AC-105", pending[0].AssetTag)
			assert.Equal(t, remoteErr.Error(), pending[0].Error)
			f.journal.AssertCalled(t, "RecordPending", mock.Anything, pending[0])

			again, err := f.ctrl.MarkChecklistOK(context.Background(), 5, "Taimoor", models.QuarterlyAudit)
			require.NoError(t, err)
			assert.True(t, again.AlreadyChecked)
			assert.False(t, again.Synced)
			f.remote.AssertNumberOfCalls(t, "SubmitChecklist", 1)
		})
	}
}

func TestMarkChecklistOK_Validation(t *testing.T) {
	f := newFixture(t, config.DefaultRoster())
	f.seed(testAssets(), nil)

	_, err := f.ctrl.MarkChecklistOK(context.Background(), 42, "Bilal", models.DailyRoutine)
	assert.ErrorIs(t, err, ErrAssetNotFound)

	_, err = f.ctrl.MarkChecklistOK(context.Background(), 1, "Bilal", "Weekly Polish")
	assert.ErrorIs(t, err, ErrInvalidCategory)

	f.remote.AssertNotCalled(t, "SubmitChecklist", mock.Anything, mock.Anything)
}

func TestZoneChecklist(t *testing.T) {
	f := newFixture(t, config.DefaultRoster())
	f.seed(testAssets(), nil)
	f.ctrl.checked[models.CheckKey(3, models.DailyRoutine)] = true
	f.ctrl.checked[models.CheckKey(3, models.QuarterlyAudit)] = true
	f.ctrl.checked[models.CheckKey(1, models.DailyRoutine)] = true

	zone, err := f.ctrl.ZoneChecklist(models.ZoneB)
	require.NoError(t, err)
	require.Len(t, zone, 2)
	assert.Equal(t, 3, zone[0].Asset.ID)
	assert.Equal(t, []models.ChecklistCategory{models.DailyRoutine, models.QuarterlyAudit}, zone[0].Completed)
	assert.Equal(t, 4, zone[1].Asset.ID)
	assert.Empty(t, zone[1].Completed)

	_, err = f.ctrl.ZoneChecklist("E")
	assert.ErrorIs(t, err, ErrInvalidZone)
}
