package finder

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/resilience"
	"github.com/sells-group/prospect-cli/internal/store"
)

func newSQLiteStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func acceptingFinder() *Finder {
	cfg := testConfig()
	cfg.Discovery.FallbackFloor = 0
	l := &fakeLLM{verdicts: map[string]string{
		"plant01.com": accept("Plant One", 72),
		"plant02.com": accept("Plant Two", 91),
	}}
	return newTestFinder(cfg, l, &fakeProvider{links: plantLinks(3)}, &fakeSites{})
}

func TestService_RunPersists(t *testing.T) {
	st := newSQLiteStore(t)
	svc := NewService(acceptingFinder(), st)
	ctx := context.Background()

	run, err := svc.Run(ctx, manufacturingICP())
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	require.NotNil(t, run.Result)
	assert.Len(t, run.Result.Prospects, 2)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, 3, got.Result.CandidatesFound)
	assert.Equal(t, 2, got.Result.AcceptedFromWeb)

	prospects, err := st.ListProspects(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"plant02.com", "plant01.com"}, domainsOf(prospects))
}

func TestService_StartNormalizesICP(t *testing.T) {
	svc := NewService(acceptingFinder(), nil)

	profile := manufacturingICP()
	profile.SellerBusinessType = "landscaping"
	profile.TargetBuyers = nil

	run, err := svc.Start(context.Background(), profile)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.SellerUnknown, run.ICP.SellerBusinessType)
	assert.NotNil(t, run.ICP.TargetBuyers)
}

func TestService_NoStore(t *testing.T) {
	svc := NewService(acceptingFinder(), nil)

	run, err := svc.Run(context.Background(), manufacturingICP())
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	assert.Len(t, run.Result.Prospects, 2)
}

func TestService_CancelledRunMarkedFailed(t *testing.T) {
	st := newSQLiteStore(t)
	svc := NewService(acceptingFinder(), st)

	run, err := svc.Start(context.Background(), manufacturingICP())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := svc.Execute(ctx, run)
	require.NoError(t, err)
	assert.Empty(t, res.Prospects)
	assert.Equal(t, model.RunStatusFailed, run.Status)

	got, err := st.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, context.Canceled.Error(), got.Error)
}

func TestService_CreateRunError(t *testing.T) {
	st := &mockStore{}
	st.On("CreateRun", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	_, err := NewService(acceptingFinder(), st).Run(context.Background(), manufacturingICP())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "finder: create run")
	st.AssertExpectations(t)
}

func TestService_SaveProspectsErrorFailsRun(t *testing.T) {
	st := &mockStore{}
	st.On("CreateRun", mock.Anything, mock.Anything).Return(&model.Run{ID: "run-1", Status: model.RunStatusRunning}, nil)
	st.On("SaveProspects", mock.Anything, "run-1", mock.Anything).Return(errors.New("disk full"))
	st.On("FailRun", mock.Anything, "run-1", "disk full").Return(nil)

	run, err := NewService(acceptingFinder(), st).Run(context.Background(), manufacturingICP())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "finder: save prospects")
	assert.Equal(t, model.RunStatusFailed, run.Status)
	st.AssertExpectations(t)
	st.AssertNotCalled(t, "CompleteRun", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_TransientPersistErrorRetried(t *testing.T) {
	st := &mockStore{}
	st.On("CreateRun", mock.Anything, mock.Anything).Return(&model.Run{ID: "run-1", Status: model.RunStatusRunning}, nil)
	st.On("SaveProspects", mock.Anything, "run-1", mock.Anything).
		Return(resilience.NewTransientError(errors.New("connection reset by peer"), 0)).Once()
	st.On("SaveProspects", mock.Anything, "run-1", mock.Anything).Return(nil).Once()
	st.On("CompleteRun", mock.Anything, "run-1", mock.Anything).Return(nil)

	run, err := NewService(acceptingFinder(), st).Run(context.Background(), manufacturingICP())
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	st.AssertNumberOfCalls(t, "SaveProspects", 2)
	st.AssertNotCalled(t, "FailRun", mock.Anything, mock.Anything, mock.Anything)
}
