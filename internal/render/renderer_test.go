package render

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/train-countdown/countdown/internal/countdown"
	"github.com/train-countdown/countdown/internal/display/mocks"
	"github.com/train-countdown/countdown/internal/metrics"
)

var base = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

func testConfig() Config {
	return Config{Width: 250, Height: 122, FontSize: 70, Interval: 10 * time.Millisecond}
}

func newStarted(t *testing.T, store *countdown.Store, opts ...Option) (*Renderer, *mocks.MockDisplay) {
	t.Helper()

	ctrl := gomock.NewController(t)
	d := mocks.NewMockDisplay(ctrl)
	d.EXPECT().Clear(color.Gray{Y: 0xff}).Return(nil)
	d.EXPECT().InitBasePartialFrame(gomock.Any()).Return(nil)

	r, err := New(d, store, testConfig(), opts...)
	require.NoError(t, err)
	require.NoError(t, r.Start())
	return r, d
}

func darkPixels(frame *image.Gray, outside image.Rectangle) (inside, beyond int) {
	b := frame.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if frame.GrayAt(x, y).Y >= 128 {
				continue
			}
			if (image.Point{X: x, Y: y}).In(outside) {
				inside++
			} else {
				beyond++
			}
		}
	}
	return inside, beyond
}

func TestStartClearsThenCommitsBaseFrame(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := mocks.NewMockDisplay(ctrl)
	gomock.InOrder(
		d.EXPECT().Clear(color.Gray{Y: 0xff}).Return(nil),
		d.EXPECT().InitBasePartialFrame(gomock.Any()).DoAndReturn(func(frame *image.Gray) error {
			assert.Equal(t, image.Rect(0, 0, 250, 122), frame.Bounds())
			return nil
		}),
	)

	r, err := New(d, countdown.NewStore(base), testConfig())
	require.NoError(t, err)
	assert.Equal(t, StateUninitialized, r.State())

	require.NoError(t, r.Start())
	assert.Equal(t, StateRunning, r.State())
	assert.Error(t, r.Start())
}

func TestStartFailureStillShutsDownOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := mocks.NewMockDisplay(ctrl)
	d.EXPECT().Clear(gomock.Any()).Return(errors.New("spi: no such device"))
	d.EXPECT().Shutdown().Return(nil).Times(1)

	r, err := New(d, countdown.NewStore(base), testConfig())
	require.NoError(t, err)

	assert.Error(t, r.Start())
	assert.Equal(t, StateUninitialized, r.State())

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.Equal(t, StateTerminated, r.State())
}

func TestTickRendersLiveCountdown(t *testing.T) {
	store := countdown.NewStore(base)
	store.Publish(125, base)

	collector := metrics.NewCollector()
	r, d := newStarted(t, store, WithMetrics(collector))
	d.EXPECT().RenderPartial(gomock.Any()).Return(nil).Times(2)

	require.NoError(t, r.Tick(base.Add(65*time.Second)))
	assert.Equal(t, "01:00", r.lastText)

	require.NoError(t, r.Tick(base.Add(10*time.Minute)))
	assert.Equal(t, "00:00", r.lastText)
}

func TestTickRendersPlaceholderWhenAbsent(t *testing.T) {
	r, d := newStarted(t, countdown.NewStore(base))
	d.EXPECT().RenderPartial(gomock.Any()).Return(nil)

	require.NoError(t, r.Tick(base))
	assert.Equal(t, countdown.Placeholder, r.lastText)
}

func TestTickDrawsOnlyInsideBand(t *testing.T) {
	store := countdown.NewStore(base)
	store.Publish(754, base)

	r, d := newStarted(t, store)
	var frames []*image.Gray
	d.EXPECT().RenderPartial(gomock.Any()).DoAndReturn(func(frame *image.Gray) error {
		frames = append(frames, frame)
		return nil
	}).Times(2)

	require.NoError(t, r.Tick(base))
	first := r.layout
	require.NoError(t, r.Tick(base.Add(time.Second)))
	assert.Same(t, first, r.layout)

	require.Len(t, frames, 2)
	inside, beyond := darkPixels(frames[1], r.layout.band)
	assert.Positive(t, inside)
	assert.Zero(t, beyond)
}

func TestTickRedrawReplacesPreviousText(t *testing.T) {
	store := countdown.NewStore(base)
	store.Publish(600, base)

	r, d := newStarted(t, store)
	d.EXPECT().RenderPartial(gomock.Any()).Return(nil).Times(2)

	require.NoError(t, r.Tick(base))
	withText := append([]byte(nil), r.frame.Pix...)

	store.PublishAbsent(base)
	require.NoError(t, r.Tick(base))
	assert.NotEqual(t, withText, r.frame.Pix)
}

func TestTickBeforeStart(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := mocks.NewMockDisplay(ctrl)

	r, err := New(d, countdown.NewStore(base), testConfig())
	require.NoError(t, err)
	assert.ErrorIs(t, r.Tick(base), ErrNotRunning)
	assert.ErrorIs(t, r.Run(context.Background()), ErrNotRunning)
}

func TestTickSurvivesRefreshError(t *testing.T) {
	r, d := newStarted(t, countdown.NewStore(base))
	gomock.InOrder(
		d.EXPECT().RenderPartial(gomock.Any()).Return(errors.New("busy timeout")),
		d.EXPECT().RenderPartial(gomock.Any()).Return(nil),
	)

	assert.Error(t, r.Tick(base))
	assert.NoError(t, r.Tick(base.Add(time.Second)))
}

func TestTickAfterClose(t *testing.T) {
	r, d := newStarted(t, countdown.NewStore(base))
	d.EXPECT().Shutdown().Return(nil).Times(1)

	require.NoError(t, r.Close())
	assert.ErrorIs(t, r.Tick(base), ErrNotRunning)
	require.NoError(t, r.Close())
}

func TestRunTicksUntilCancelled(t *testing.T) {
	r, d := newStarted(t, countdown.NewStore(base))
	d.EXPECT().RenderPartial(gomock.Any()).Return(nil).MinTimes(2)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	assert.NoError(t, r.Run(ctx))
}

func TestNewRejectsEmptyFrame(t *testing.T) {
	ctrl := gomock.NewController(t)
	_, err := New(mocks.NewMockDisplay(ctrl), countdown.NewStore(base), Config{FontSize: 70})
	assert.Error(t, err)
}

func TestTickWidensLayoutForLongCountdowns(t *testing.T) {
	store := countdown.NewStore(base)
	store.Publish(600, base)

	r, d := newStarted(t, store)
	d.EXPECT().RenderPartial(gomock.Any()).Return(nil).Times(3)

	require.NoError(t, r.Tick(base))
	short := r.layout.band

	store.Publish(6000, base)
	require.NoError(t, r.Tick(base))
	assert.Equal(t, "100:00", r.lastText)
	assert.Greater(t, r.layout.band.Dx(), short.Dx())
	long := r.layout.band

	store.Publish(600, base)
	require.NoError(t, r.Tick(base))
	_, beyond := darkPixels(r.frame, r.layout.band)
	assert.Zero(t, beyond, "wide text left behind outside %v (was %v)", r.layout.band, long)
}
