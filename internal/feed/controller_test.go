package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notifeed/internal/model"
	"github.com/nhle/notifeed/internal/remote"
)

type apiMock struct {
	mock.Mock
}

func (m *apiMock) List(ctx context.Context, target model.QueryTarget) ([]model.Notification, error) {
	args := m.Called(ctx, target)
	items, _ := args.Get(0).([]model.Notification)
	return items, args.Error(1)
}

func (m *apiMock) MarkRead(ctx context.Context, id model.ID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *apiMock) MarkAllRead(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *apiMock) GenerateDynamic(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var allTarget = model.QueryTarget{Kind: model.TargetAll}

func sampleRoster() []model.Notification {
	base := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	return []model.Notification{
		{ID: "n3", Type: model.TypeWeather, Title: "Storm", Message: "Gusts", CreatedAt: base},
		{ID: "n2", Type: model.TypeAnimal, Title: "Heron", Message: "Spotted", CreatedAt: base.Add(-time.Hour), Read: true},
		{ID: "n1", Type: model.TypeMedical, Title: "Tick", Message: "Check", CreatedAt: base.Add(-2 * time.Hour)},
	}
}

func readyController(t *testing.T, roster []model.Notification) (*Controller, *apiMock) {
	t.Helper()
	api := &apiMock{}
	api.On("List", mock.Anything, allTarget).Return(roster, nil).Once()
	c := New(api)
	require.NoError(t, c.Refresh(context.Background()))
	require.Equal(t, StatusReady, c.Snapshot().Status)
	return c, api
}

func TestNewStartsLoadingAndEmpty(t *testing.T) {
	c := New(&apiMock{})
	snap := c.Snapshot()
	require.Equal(t, StatusLoading, snap.Status)
	require.Empty(t, snap.Roster)
	require.Empty(t, snap.Err)
	require.Equal(t, model.Filter{}, snap.Filter)
	require.Zero(t, snap.UnreadCount())
}

func TestRefreshReplacesRoster(t *testing.T) {
	roster := sampleRoster()
	c, api := readyController(t, roster)

	snap := c.Snapshot()
	require.Len(t, snap.Roster, len(roster))
	require.Equal(t, roster, snap.Roster)
	require.Equal(t, 2, snap.UnreadCount())
	require.Equal(t, 2, c.UnreadCount())
	api.AssertExpectations(t)
}

func TestRefreshDropsDuplicateIDs(t *testing.T) {
	roster := sampleRoster()
	dup := append(roster, model.Notification{ID: "n3", Title: "again"})
	c, _ := readyController(t, dup)
	require.Equal(t, roster, c.Snapshot().Roster)
}

func TestFetchFailureKeepsRoster(t *testing.T) {
	roster := sampleRoster()
	c, api := readyController(t, roster)

	fetchErr := errors.New("connection refused")
	api.On("List", mock.Anything, allTarget).Return(nil, fetchErr).Once()

	err := c.Refresh(context.Background())
	require.ErrorIs(t, err, fetchErr)

	snap := c.Snapshot()
	require.Equal(t, StatusError, snap.Status)
	require.Equal(t, msgFetchFailed, snap.Err)
	require.Equal(t, roster, snap.Roster)
}

func TestFetchAuthFailureMessage(t *testing.T) {
	api := &apiMock{}
	api.On("List", mock.Anything, allTarget).Return(nil, &remote.AuthError{Message: "expired"}).Once()
	c := New(api)

	require.Error(t, c.Refresh(context.Background()))
	snap := c.Snapshot()
	require.Equal(t, StatusError, snap.Status)
	require.Contains(t, snap.Err, msgSessionExpired)
	require.Empty(t, snap.Roster)
}

func TestStatusTransitions(t *testing.T) {
	api := &apiMock{}
	c := New(api)
	require.Equal(t, StatusLoading, c.Snapshot().Status)

	// Loading -> Error
	api.On("List", mock.Anything, allTarget).Return(nil, errors.New("down")).Once()
	require.Error(t, c.Refresh(context.Background()))
	require.Equal(t, StatusError, c.Snapshot().Status)

	// Error -> Loading clears the message
	ticket := c.StartFetch()
	snap := c.Snapshot()
	require.Equal(t, StatusLoading, snap.Status)
	require.Empty(t, snap.Err)

	// Loading -> Ready
	api.On("List", mock.Anything, allTarget).Return(sampleRoster(), nil).Once()
	require.NoError(t, c.RunFetch(context.Background(), ticket))
	require.Equal(t, StatusReady, c.Snapshot().Status)

	// Ready -> Loading on filter change
	ticket, err := c.SetFilter(model.Filter{UnreadOnly: true})
	require.NoError(t, err)
	require.Equal(t, StatusLoading, c.Snapshot().Status)
	require.Equal(t, model.QueryTarget{Kind: model.TargetUnread}, ticket.Target())
}

func TestStaleFetchIsDiscarded(t *testing.T) {
	api := &apiMock{}
	c := New(api)

	older := c.StartFetch()
	newer, err := c.SetFilter(model.Filter{Type: model.TypePlant})
	require.NoError(t, err)

	plants := []model.Notification{{ID: "p1", Type: model.TypePlant}}
	api.On("List", mock.Anything, newer.Target()).Return(plants, nil).Once()
	api.On("List", mock.Anything, older.Target()).Return(sampleRoster(), nil).Once()

	// The newer request completes first; the older one lands afterwards.
	require.NoError(t, c.RunFetch(context.Background(), newer))
	require.ErrorIs(t, c.RunFetch(context.Background(), older), ErrSuperseded)

	snap := c.Snapshot()
	require.Equal(t, StatusReady, snap.Status)
	require.Equal(t, plants, snap.Roster)
	api.AssertExpectations(t)
}

func TestStaleFetchFailureIsDiscarded(t *testing.T) {
	api := &apiMock{}
	c := New(api)

	older := c.StartFetch()
	newer := c.StartFetch()

	api.On("List", mock.Anything, allTarget).Return(sampleRoster(), nil).Once()
	require.NoError(t, c.RunFetch(context.Background(), newer))

	api.On("List", mock.Anything, allTarget).Return(nil, errors.New("late failure")).Once()
	require.ErrorIs(t, c.RunFetch(context.Background(), older), ErrSuperseded)

	require.Equal(t, StatusReady, c.Snapshot().Status)
}

func TestSetFilterRejectsOther(t *testing.T) {
	c := New(&apiMock{})
	_, err := c.SetFilter(model.Filter{Type: model.TypeOther})
	require.ErrorIs(t, err, model.ErrInvalidFilter)
	require.Equal(t, model.Filter{}, c.Snapshot().Filter)
}

func TestWithFilter(t *testing.T) {
	f := model.Filter{Type: model.TypeAnimal, UnreadOnly: true}
	c := New(&apiMock{}, WithFilter(f))
	require.Equal(t, f, c.Snapshot().Filter)
	require.Equal(t, model.QueryTarget{Kind: model.TargetTypeUnread, Type: model.TypeAnimal}, c.StartFetch().Target())
}

func TestMarkAsRead(t *testing.T) {
	roster := sampleRoster()
	c, api := readyController(t, roster)
	before := c.Snapshot()

	api.On("MarkRead", mock.Anything, model.ID("n1")).Return(nil).Once()
	notice, err := c.MarkAsRead(context.Background(), "n1")
	require.NoError(t, err)
	require.Equal(t, NoticeSuccess, notice.Kind)

	after := c.Snapshot()
	require.Len(t, after.Roster, len(roster))
	for i := range after.Roster {
		if after.Roster[i].ID == "n1" {
			require.True(t, after.Roster[i].Read)
			continue
		}
		require.Equal(t, roster[i], after.Roster[i])
	}
	require.Equal(t, 1, after.UnreadCount())

	// Earlier snapshots are not mutated.
	require.False(t, before.Roster[2].Read)
	api.AssertExpectations(t)
}

func TestMarkAsReadUnknownID(t *testing.T) {
	roster := sampleRoster()
	c, api := readyController(t, roster)

	notice, err := c.MarkAsRead(context.Background(), "missing")
	require.ErrorIs(t, err, ErrUnknownNotification)
	require.Equal(t, NoticeError, notice.Kind)
	require.Equal(t, roster, c.Snapshot().Roster)
	api.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything)
}

func TestMarkAsReadFailureLeavesRoster(t *testing.T) {
	roster := sampleRoster()
	c, api := readyController(t, roster)

	api.On("MarkRead", mock.Anything, model.ID("n3")).Return(errors.New("503")).Once()
	notice, err := c.MarkAsRead(context.Background(), "n3")
	require.Error(t, err)
	require.Equal(t, NoticeError, notice.Kind)
	require.Equal(t, roster, c.Snapshot().Roster)
	require.Equal(t, StatusReady, c.Snapshot().Status)
}

func TestMarkAllAsReadIdempotent(t *testing.T) {
	c, api := readyController(t, sampleRoster())
	api.On("MarkAllRead", mock.Anything).Return(nil).Twice()

	notice, err := c.MarkAllAsRead(context.Background())
	require.NoError(t, err)
	require.Equal(t, NoticeSuccess, notice.Kind)

	first := c.Snapshot()
	for _, item := range first.Roster {
		require.True(t, item.Read)
	}
	require.Zero(t, first.UnreadCount())

	_, err = c.MarkAllAsRead(context.Background())
	require.NoError(t, err)
	require.Equal(t, first, c.Snapshot())
	api.AssertExpectations(t)
}

func TestMarkAllAsReadFailure(t *testing.T) {
	roster := sampleRoster()
	c, api := readyController(t, roster)
	api.On("MarkAllRead", mock.Anything).Return(errors.New("timeout")).Once()

	notice, err := c.MarkAllAsRead(context.Background())
	require.Error(t, err)
	require.Equal(t, NoticeError, notice.Kind)
	require.Equal(t, roster, c.Snapshot().Roster)
}

func TestGenerateDynamicRefetches(t *testing.T) {
	roster := sampleRoster()
	c, api := readyController(t, roster)

	grown := append([]model.Notification{{ID: "n4", Type: model.TypePlant, Title: "Moss"}}, roster...)
	api.On("GenerateDynamic", mock.Anything).Return(nil).Once()
	api.On("List", mock.Anything, allTarget).Return(grown, nil).Once()

	notice, err := c.GenerateDynamic(context.Background())
	require.NoError(t, err)
	require.Equal(t, NoticeSuccess, notice.Kind)

	snap := c.Snapshot()
	require.False(t, snap.Generating)
	require.Equal(t, StatusReady, snap.Status)

	ids := make(map[model.ID]bool, len(snap.Roster))
	for _, item := range snap.Roster {
		ids[item.ID] = true
	}
	for _, item := range roster {
		require.True(t, ids[item.ID], "missing %s after generation", item.ID)
	}
	api.AssertExpectations(t)
}

func TestGenerateDynamicFailure(t *testing.T) {
	roster := sampleRoster()
	c, api := readyController(t, roster)
	api.On("GenerateDynamic", mock.Anything).Return(errors.New("500")).Once()

	notice, err := c.GenerateDynamic(context.Background())
	require.Error(t, err)
	require.Equal(t, NoticeError, notice.Kind)

	snap := c.Snapshot()
	require.False(t, snap.Generating)
	require.Equal(t, StatusReady, snap.Status)
	require.Equal(t, roster, snap.Roster)
	api.AssertNumberOfCalls(t, "List", 1)
}

func TestGenerateDynamicBusy(t *testing.T) {
	c, api := readyController(t, sampleRoster())

	release := make(chan struct{})
	started := make(chan struct{})
	api.On("GenerateDynamic", mock.Anything).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(nil).Once()
	api.On("List", mock.Anything, allTarget).Return(sampleRoster(), nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := c.GenerateDynamic(context.Background())
		done <- err
	}()

	<-started
	snap := c.Snapshot()
	require.True(t, snap.Generating)
	require.Equal(t, StatusReady, snap.Status, "generating must not blank the list")

	_, err := c.GenerateDynamic(context.Background())
	require.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-done)
	require.False(t, c.Snapshot().Generating)
}

func TestStatusString(t *testing.T) {
	require.Equal(t, "loading", StatusLoading.String())
	require.Equal(t, "error", StatusError.String())
	require.Equal(t, "ready", StatusReady.String())
}
