package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/riskibarqy/fpl-stats/internal/platform/logging"
)

type mockStatsProvider struct {
	mock.Mock
}

func (m *mockStatsProvider) FetchGeneralInfo(ctx context.Context) (ExternalGeneralInfo, error) {
	args := m.Called(ctx)
	return args.Get(0).(ExternalGeneralInfo), args.Error(1)
}

func (m *mockStatsProvider) FetchFixtures(ctx context.Context) (ExternalFixtureList, error) {
	args := m.Called(ctx)
	return args.Get(0).(ExternalFixtureList), args.Error(1)
}

func (m *mockStatsProvider) FetchPlayerDetail(ctx context.Context, playerID int64) (ExternalPlayerDetail, error) {
	args := m.Called(ctx, playerID)
	if fn, ok := args.Get(0).(func(context.Context, int64) ExternalPlayerDetail); ok {
		return fn(ctx, playerID), args.Error(1)
	}
	return args.Get(0).(ExternalPlayerDetail), args.Error(1)
}

type mockCollectionSink struct {
	mock.Mock
}

func (m *mockCollectionSink) Ingest(ctx context.Context, data CollectedData) (IngestionSummary, error) {
	args := m.Called(ctx, data)
	return args.Get(0).(IngestionSummary), args.Error(1)
}

func generalInfoWithPlayers(n int) ExternalGeneralInfo {
	info := ExternalGeneralInfo{Raw: []byte(`{"elements":[...]}`)}
	for i := 1; i <= n; i++ {
		info.Players = append(info.Players, ExternalPlayer{ExternalID: int64(i), WebName: fmt.Sprintf("player-%d", i)})
	}
	return info
}

func fixtureListOf(n int) ExternalFixtureList {
	list := ExternalFixtureList{Raw: []byte(`[{"id":1}]`)}
	for i := 1; i <= n; i++ {
		list.Items = append(list.Items, ExternalFixture{ExternalID: int64(i)})
	}
	return list
}

func detailFor(id int64) ExternalPlayerDetail {
	return ExternalPlayerDetail{PlayerExternalID: id, Raw: []byte(fmt.Sprintf(`{"history":[{"element":%d}]}`, id))}
}

func newObservedLogger() (*logging.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logging.FromZap(zap.New(core)), logs
}

func TestCollectionService_FetchesOnlyFirstBatch(t *testing.T) {
	t.Parallel()

	provider := new(mockStatsProvider)
	provider.On("FetchGeneralInfo", mock.Anything).Return(generalInfoWithPlayers(15), nil).Once()
	provider.On("FetchFixtures", mock.Anything).Return(fixtureListOf(380), nil).Once()
	for id := int64(1); id <= 10; id++ {
		provider.On("FetchPlayerDetail", mock.Anything, id).Return(detailFor(id), nil).Once()
	}

	logger, logs := newObservedLogger()
	svc := NewCollectionService(provider, nil, CollectionConfig{PlayerBatchSize: 10}, logger)

	result, err := svc.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, result.PlayerDetails, 10)
	require.Zero(t, result.FailedPlayerDetails())
	for i, item := range result.PlayerDetails {
		require.Equal(t, int64(i+1), item.PlayerID)
		require.Equal(t, int64(i+1), item.Detail.PlayerExternalID)
	}
	provider.AssertExpectations(t)
	provider.AssertNumberOfCalls(t, "FetchPlayerDetail", 10)

	playerLog := logs.FilterMessage("collected player details").All()
	require.Len(t, playerLog, 1)
	require.EqualValues(t, 10, playerLog[0].ContextMap()["players"])
	fixtureLog := logs.FilterMessage("collected fixtures").All()
	require.Len(t, fixtureLog, 1)
	require.EqualValues(t, 380, fixtureLog[0].ContextMap()["fixtures"])
}

func TestCollectionService_FewerPlayersThanBatch(t *testing.T) {
	t.Parallel()

	provider := new(mockStatsProvider)
	provider.On("FetchGeneralInfo", mock.Anything).Return(generalInfoWithPlayers(3), nil)
	provider.On("FetchFixtures", mock.Anything).Return(fixtureListOf(2), nil)
	provider.On("FetchPlayerDetail", mock.Anything, mock.AnythingOfType("int64")).Return(
		func(_ context.Context, id int64) ExternalPlayerDetail { return detailFor(id) },
		nil,
	)

	svc := NewCollectionService(provider, nil, CollectionConfig{PlayerBatchSize: 10}, logging.NewNop())
	result, err := svc.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, result.PlayerDetails, 3)
	provider.AssertNumberOfCalls(t, "FetchPlayerDetail", 3)
}

func TestCollectionService_NoPlayers(t *testing.T) {
	t.Parallel()

	provider := new(mockStatsProvider)
	provider.On("FetchGeneralInfo", mock.Anything).Return(ExternalGeneralInfo{Raw: []byte(`{"elements":[]}`)}, nil)
	provider.On("FetchFixtures", mock.Anything).Return(fixtureListOf(1), nil)

	logger, logs := newObservedLogger()
	svc := NewCollectionService(provider, nil, CollectionConfig{PlayerBatchSize: 10}, logger)
	result, err := svc.Collect(context.Background())
	require.NoError(t, err)
	require.Empty(t, result.PlayerDetails)
	provider.AssertNotCalled(t, "FetchPlayerDetail", mock.Anything, mock.Anything)

	playerLog := logs.FilterMessage("collected player details").All()
	require.Len(t, playerLog, 1)
	require.EqualValues(t, 0, playerLog[0].ContextMap()["players"])
}

func TestCollectionService_AbortsWhenUpstreamMissing(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		general     ExternalGeneralInfo
		generalErr  error
		fixtures    ExternalFixtureList
		fixturesErr error
	}{
		{name: "empty fixtures", general: generalInfoWithPlayers(5), fixtures: ExternalFixtureList{Raw: []byte(`[]`)}},
		{name: "empty general info", general: ExternalGeneralInfo{Raw: []byte(`{}`)}, fixtures: fixtureListOf(2)},
		{name: "general info error", generalErr: errors.New("status 500"), fixtures: fixtureListOf(2)},
		{name: "fixtures error", general: generalInfoWithPlayers(5), fixturesErr: errors.New("status 503")},
		{name: "both failed", generalErr: errors.New("boom"), fixturesErr: errors.New("boom")},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			provider := new(mockStatsProvider)
			provider.On("FetchGeneralInfo", mock.Anything).Return(tc.general, tc.generalErr)
			provider.On("FetchFixtures", mock.Anything).Return(tc.fixtures, tc.fixturesErr)
			sink := new(mockCollectionSink)

			logger, logs := newObservedLogger()
			svc := NewCollectionService(provider, sink, CollectionConfig{PlayerBatchSize: 10}, logger)

			_, err := svc.Collect(context.Background())
			require.ErrorIs(t, err, ErrCollectionAborted)
			if tc.generalErr != nil {
				require.ErrorContains(t, err, tc.generalErr.Error())
			}
			provider.AssertNotCalled(t, "FetchPlayerDetail", mock.Anything, mock.Anything)
			sink.AssertNotCalled(t, "Ingest", mock.Anything, mock.Anything)
			require.Equal(t, 1, logs.FilterMessage("failed to fetch general info or fixtures").Len())
			require.Zero(t, logs.FilterMessage("collected player details").Len())
		})
	}
}

func TestCollectionService_PartialDetailFailure(t *testing.T) {
	t.Parallel()

	provider := new(mockStatsProvider)
	provider.On("FetchGeneralInfo", mock.Anything).Return(generalInfoWithPlayers(15), nil)
	provider.On("FetchFixtures", mock.Anything).Return(fixtureListOf(10), nil)
	provider.On("FetchPlayerDetail", mock.Anything, int64(4)).Return(ExternalPlayerDetail{}, errors.New("status 500"))
	provider.On("FetchPlayerDetail", mock.Anything, mock.MatchedBy(func(id int64) bool { return id != 4 })).Return(
		func(_ context.Context, id int64) ExternalPlayerDetail { return detailFor(id) },
		nil,
	)

	logger, logs := newObservedLogger()
	svc := NewCollectionService(provider, nil, CollectionConfig{PlayerBatchSize: 10}, logger)

	result, err := svc.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, result.PlayerDetails, 10)
	require.Equal(t, 1, result.FailedPlayerDetails())

	failed := result.PlayerDetails[3]
	require.Equal(t, int64(4), failed.PlayerID)
	require.True(t, failed.Failed())
	require.True(t, failed.Detail.IsEmpty())

	playerLog := logs.FilterMessage("collected player details").All()
	require.Len(t, playerLog, 1)
	require.EqualValues(t, 1, playerLog[0].ContextMap()["failed"])
}

type concurrencyGauge struct {
	general  ExternalGeneralInfo
	fixtures ExternalFixtureList

	mu      sync.Mutex
	current int
	peak    int
	calls   atomic.Int32
	release chan struct{}
}

func (p *concurrencyGauge) FetchGeneralInfo(context.Context) (ExternalGeneralInfo, error) {
	return p.general, nil
}

func (p *concurrencyGauge) FetchFixtures(context.Context) (ExternalFixtureList, error) {
	return p.fixtures, nil
}

func (p *concurrencyGauge) FetchPlayerDetail(ctx context.Context, playerID int64) (ExternalPlayerDetail, error) {
	p.calls.Add(1)
	p.mu.Lock()
	p.current++
	if p.current > p.peak {
		p.peak = p.current
	}
	p.mu.Unlock()

	select {
	case <-p.release:
	case <-time.After(20 * time.Millisecond):
	case <-ctx.Done():
	}

	p.mu.Lock()
	p.current--
	p.mu.Unlock()
	return detailFor(playerID), nil
}

func TestCollectionService_BatchIsConcurrentAndBounded(t *testing.T) {
	t.Parallel()

	gauge := &concurrencyGauge{
		general:  generalInfoWithPlayers(40),
		fixtures: fixtureListOf(1),
		release:  make(chan struct{}),
	}
	svc := NewCollectionService(gauge, nil, CollectionConfig{PlayerBatchSize: 5}, logging.NewNop())

	result, err := svc.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, result.PlayerDetails, 5)
	require.Equal(t, int32(5), gauge.calls.Load())
	require.LessOrEqual(t, gauge.peak, 5)
	require.Greater(t, gauge.peak, 1)
}

func TestCollectionService_PassesResultToSink(t *testing.T) {
	t.Parallel()

	provider := new(mockStatsProvider)
	provider.On("FetchGeneralInfo", mock.Anything).Return(generalInfoWithPlayers(2), nil)
	provider.On("FetchFixtures", mock.Anything).Return(fixtureListOf(1), nil)
	provider.On("FetchPlayerDetail", mock.Anything, mock.AnythingOfType("int64")).Return(
		func(_ context.Context, id int64) ExternalPlayerDetail { return detailFor(id) },
		nil,
	)

	sink := new(mockCollectionSink)
	sink.On("Ingest", mock.Anything, mock.MatchedBy(func(data CollectedData) bool {
		return len(data.PlayerDetails) == 2 && len(data.Fixtures.Items) == 1
	})).Return(IngestionSummary{Players: 2, Fixtures: 1}, nil).Once()

	svc := NewCollectionService(provider, sink, CollectionConfig{PlayerBatchSize: 10}, logging.NewNop())
	result, err := svc.Collect(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result.Ingestion)
	require.Equal(t, 2, result.Ingestion.Players)
	sink.AssertExpectations(t)
}

func TestCollectionService_SinkFailure(t *testing.T) {
	t.Parallel()

	provider := new(mockStatsProvider)
	provider.On("FetchGeneralInfo", mock.Anything).Return(generalInfoWithPlayers(1), nil)
	provider.On("FetchFixtures", mock.Anything).Return(fixtureListOf(1), nil)
	provider.On("FetchPlayerDetail", mock.Anything, int64(1)).Return(detailFor(1), nil)

	sink := new(mockCollectionSink)
	sink.On("Ingest", mock.Anything, mock.Anything).Return(IngestionSummary{}, errors.New("db down"))

	svc := NewCollectionService(provider, sink, CollectionConfig{PlayerBatchSize: 10}, logging.NewNop())
	_, err := svc.Collect(context.Background())
	require.ErrorContains(t, err, "db down")
	require.NotErrorIs(t, err, ErrCollectionAborted)
}

func TestIsEmptyPayload(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "  ", "null", "{}", "[]", "{ }", "[\n]"} {
		require.True(t, IsEmptyPayload([]byte(raw)), "raw %q", raw)
	}
	for _, raw := range []string{`{"a":1}`, `[1]`, `0`, `"x"`} {
		require.False(t, IsEmptyPayload([]byte(raw)), "raw %q", raw)
	}
}
