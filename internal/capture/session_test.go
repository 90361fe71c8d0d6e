package capture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/CodingBot000/miracle3day-sub001/internal/clock"
	"github.com/CodingBot000/miracle3day-sub001/internal/frame"
	"github.com/CodingBot000/miracle3day-sub001/internal/guidance"
	"github.com/CodingBot000/miracle3day-sub001/internal/quality"
)

// mockSource is a testify mock of quality.Source
type mockSource struct {
	mock.Mock
}

func (m *mockSource) Analyze(buf *frame.PixelBuffer) (quality.Analysis, error) {
	args := m.Called(buf)
	return args.Get(0).(quality.Analysis), args.Error(1)
}

// mockPublisher is a testify mock of Publisher
type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(s Snapshot) {
	m.Called(s)
}

func readyAnalysis() quality.Analysis {
	return quality.Analysis{
		Metrics: quality.FrameMetrics{
			FrameWidth: 640, FrameHeight: 480, HasFace: true, FaceSizePercent: 30,
			FaceCenterX: 320, FaceCenterY: 240,
		},
		Quality: quality.FaceQuality{
			HasFace: true, Area: quality.AreaGood, Frontal: quality.FrontalGood,
			Lighting: quality.LightingGood, FaceAngle: quality.AngleGood, NakedEye: quality.NakedEyeGood,
		},
	}
}

type fixture struct {
	session *Session
	source  *mockSource
	pub     *mockPublisher
	frames  *LatestFrame
	clock   *clock.Mock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		source: &mockSource{},
		pub:    &mockPublisher{},
		frames: NewLatestFrame(),
		clock:  clock.NewMock(time.Unix(1000, 0)),
	}
	f.session = NewSession(DefaultConfig(), f.source, guidance.DefaultConfig(), f.frames,
		WithClock(f.clock), WithID("test-session"), WithPublisher(f.pub))
	t.Cleanup(f.session.Stop)
	return f
}

func TestSession_TickBeforeStart(t *testing.T) {
	f := newFixture(t)
	f.frames.Put(frame.NewPixelBuffer(4, 4))

	_, err := f.session.Tick(context.Background())
	assert.True(t, errors.Is(err, ErrSessionClosed))
	f.source.AssertNotCalled(t, "Analyze", mock.Anything)
}

func TestSession_TickPublishes(t *testing.T) {
	f := newFixture(t)
	buf := frame.NewPixelBuffer(4, 4)
	f.source.On("Analyze", buf).Return(readyAnalysis(), nil).Once()
	f.pub.On("Publish", mock.AnythingOfType("capture.Snapshot")).Return().Once()

	require.NoError(t, f.session.Start(context.Background()))
	f.frames.Put(buf)

	snap, err := f.session.Tick(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "test-session", snap.SessionID)
	assert.Equal(t, uint64(1), snap.Sequence)
	assert.Equal(t, guidance.SeveritySuccess, snap.Guidance.Severity)
	assert.True(t, snap.Guidance.CanCapture)
	assert.Equal(t, time.Unix(1000, 0), snap.At)

	stored, ok := f.session.Store().Get()
	require.True(t, ok)
	assert.Equal(t, snap, stored)

	f.source.AssertExpectations(t)
	f.pub.AssertExpectations(t)
}

func TestSession_NoFrameSkipsTick(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.session.Start(context.Background()))

	_, err := f.session.Tick(context.Background())
	assert.True(t, errors.Is(err, ErrNoFrame))
	assert.Equal(t, uint64(1), f.session.Stats().Skipped)
	f.pub.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestSession_InvalidFrameKeepsPreviousSnapshot(t *testing.T) {
	f := newFixture(t)
	good := frame.NewPixelBuffer(4, 4)
	bad := &frame.PixelBuffer{Width: 4, Height: 4}
	f.source.On("Analyze", good).Return(readyAnalysis(), nil).Once()
	f.source.On("Analyze", bad).Return(quality.Analysis{}, frame.ErrInvalidBuffer).Once()
	f.pub.On("Publish", mock.Anything).Return().Once()

	require.NoError(t, f.session.Start(context.Background()))

	f.frames.Put(good)
	first, err := f.session.Tick(context.Background())
	require.NoError(t, err)

	f.frames.Put(bad)
	_, err = f.session.Tick(context.Background())
	assert.True(t, errors.Is(err, frame.ErrInvalidBuffer))

	stored, _ := f.session.Store().Get()
	assert.Equal(t, first, stored)
	assert.Equal(t, uint64(1), f.session.Stats().Failed)
	f.pub.AssertNumberOfCalls(t, "Publish", 1)
}

func TestSession_OverlappingTickIsSkipped(t *testing.T) {
	f := newFixture(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	f.source.On("Analyze", mock.Anything).Return(readyAnalysis(), nil).Run(func(mock.Arguments) {
		close(entered)
		<-release
	}).Once()
	f.pub.On("Publish", mock.Anything).Return()

	require.NoError(t, f.session.Start(context.Background()))
	f.frames.Put(frame.NewPixelBuffer(4, 4))

	errc := make(chan error, 1)
	go func() {
		_, err := f.session.Tick(context.Background())
		errc <- err
	}()
	<-entered

	f.frames.Put(frame.NewPixelBuffer(4, 4))
	_, err := f.session.Tick(context.Background())
	assert.True(t, errors.Is(err, ErrTickInFlight))

	close(release)
	require.NoError(t, <-errc)
	f.source.AssertNumberOfCalls(t, "Analyze", 1)
}

func TestSession_StopDuringTickPublishesNothing(t *testing.T) {
	f := newFixture(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	f.source.On("Analyze", mock.Anything).Return(readyAnalysis(), nil).Run(func(mock.Arguments) {
		close(entered)
		<-release
	}).Once()

	require.NoError(t, f.session.Start(context.Background()))
	f.frames.Put(frame.NewPixelBuffer(4, 4))

	errc := make(chan error, 1)
	go func() {
		_, err := f.session.Tick(context.Background())
		errc <- err
	}()
	<-entered

	f.session.Stop()
	close(release)

	assert.True(t, errors.Is(<-errc, ErrSessionClosed))
	_, ok := f.session.Store().Get()
	assert.False(t, ok)
	f.pub.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestSession_LoopTicksOnClock(t *testing.T) {
	f := newFixture(t)
	f.source.On("Analyze", mock.Anything).Return(readyAnalysis(), nil)
	f.pub.On("Publish", mock.Anything).Return()

	got := make(chan Snapshot, 4)
	f.session.outs = append(f.session.outs, PublisherFunc(func(s Snapshot) { got <- s }))

	require.NoError(t, f.session.Start(context.Background()))

	for i := 1; i <= 3; i++ {
		f.frames.Put(frame.NewPixelBuffer(4, 4))
		f.clock.Advance(DefaultConfig().TickInterval)

		select {
		case s := <-got:
			assert.Equal(t, uint64(i), s.Sequence)
		case <-time.After(2 * time.Second):
			t.Fatalf("tick %d was not published", i)
		}
	}

	assert.Equal(t, uint64(3), f.session.Stats().Published)
}

func TestSession_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, f.session.Start(ctx))
	assert.True(t, f.session.Active())
	assert.True(t, errors.Is(f.session.Start(ctx), ErrSessionStarted))

	cancel()
	assert.Eventually(t, func() bool { return !f.session.Active() }, 2*time.Second, 5*time.Millisecond)

	f.session.Stop()
	f.session.Stop()

	require.NoError(t, f.session.Start(context.Background()), "a stopped session can be restarted")
	f.session.Stop()
	assert.False(t, f.session.Active())
}

func TestSession_RejectsBadInterval(t *testing.T) {
	s := NewSession(Config{}, &mockSource{}, guidance.DefaultConfig(), NewLatestFrame())
	assert.Error(t, s.Start(context.Background()))
	assert.NotEmpty(t, s.ID())
}

func TestLatestFrame(t *testing.T) {
	l := NewLatestFrame()
	_, err := l.Frame(context.Background())
	assert.True(t, errors.Is(err, ErrNoFrame))

	first, second := frame.NewPixelBuffer(1, 1), frame.NewPixelBuffer(2, 2)
	l.Put(first)
	l.Put(second)

	got, err := l.Frame(context.Background())
	require.NoError(t, err)
	assert.Same(t, second, got, "newest frame wins")

	_, err = l.Frame(context.Background())
	assert.True(t, errors.Is(err, ErrNoFrame), "a frame is handed out once")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Frame(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}
