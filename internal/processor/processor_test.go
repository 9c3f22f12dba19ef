package processor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamusis/assetmap/internal/assetmap"
	"github.com/kamusis/assetmap/internal/processor"
)

type recordingWriter struct {
	calls []assetmap.Index
	paths []string
	err   error
}

func (w *recordingWriter) Write(path string, idx assetmap.Index) error {
	w.paths = append(w.paths, path)
	w.calls = append(w.calls, idx)
	return w.err
}

func newProcessor(t *testing.T, policy assetmap.CollisionPolicy) (*processor.Processor, *recordingWriter) {
	t.Helper()
	r := assetmap.NewResolver(assetmap.RulesFromMap(map[string][]string{
		"icon":  {"svg"},
		"image": {"png", "jpg"},
	}), nil)
	tr := assetmap.NewTracker(r, assetmap.WithCollisionPolicy(policy))
	w := &recordingWriter{}
	return processor.New(tr, w, "out/map.json"), w
}

func TestProcess_DispatchesAndWritesOnce(t *testing.T) {
	p, w := newProcessor(t, assetmap.CollisionOverwrite)

	sum, err := p.Process(context.Background(), []assetmap.Event{
		assetmap.NewEvent(assetmap.EventInit, "widgets/button/button.svg"),
		assetmap.NewEvent(assetmap.EventAdd, "photos/cat.png"),
		assetmap.NewEvent(assetmap.EventChange, "photos/dog.png"),
		assetmap.NewEvent(assetmap.EventUnlink, "photos/cat.png"),
		{Kind: assetmap.EventUnknown, Path: "photos"},
	})
	require.NoError(t, err)

	assert.Equal(t, processor.Summary{Tracked: 3, Untracked: 1, Ignored: 1, Written: true}, sum)
	require.Len(t, w.calls, 1)
	assert.Equal(t, []string{"out/map.json"}, w.paths)
	assert.Equal(t, assetmap.Index{
		"icon": {
			"widgets/button/button": "widgets/button/button.svg",
			"widgets/button":        "widgets/button/button.svg",
		},
		"image": {"photos/dog": "photos/dog.png"},
	}, w.calls[0])
}

func TestProcess_FailedEventSkipsWrite(t *testing.T) {
	p, w := newProcessor(t, assetmap.CollisionReject)

	sum, err := p.Process(context.Background(), []assetmap.Event{
		assetmap.NewEvent(assetmap.EventAdd, "a/b.png"),
		assetmap.NewEvent(assetmap.EventAdd, "a/b.jpg"),
		assetmap.NewEvent(assetmap.EventAdd, "a/c.png"),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, assetmap.ErrShortPathCollision))
	assert.Equal(t, 2, sum.Tracked)
	assert.Equal(t, 1, sum.Failed)
	assert.False(t, sum.Written)
	assert.Empty(t, w.calls)

	// Events after the failure were still applied.
	full, ok := p.Tracker().Lookup("image", "a/c")
	require.True(t, ok)
	assert.Equal(t, "a/c.png", full)
}

func TestProcess_WriterErrorIsWrapped(t *testing.T) {
	p, w := newProcessor(t, assetmap.CollisionOverwrite)
	w.err = errors.New("disk full")

	_, err := p.Process(context.Background(), []assetmap.Event{
		assetmap.NewEvent(assetmap.EventAdd, "a/b.png"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, w.err)
	assert.Contains(t, err.Error(), "out/map.json")
}

func TestProcess_CanceledContext(t *testing.T) {
	p, w := newProcessor(t, assetmap.CollisionOverwrite)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Process(ctx, []assetmap.Event{assetmap.NewEvent(assetmap.EventAdd, "a/b.png")})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, w.calls)
}

func TestProcess_NilWriter(t *testing.T) {
	tr := assetmap.NewTracker(assetmap.NewResolver(nil, nil))
	p := processor.New(tr, nil, "")

	sum, err := p.Process(context.Background(), []assetmap.Event{assetmap.NewEvent(assetmap.EventAdd, "a.txt")})
	require.NoError(t, err)
	assert.False(t, sum.Written)
	_, ok := tr.Lookup("txt", "a")
	assert.True(t, ok)
}

func TestProcess_EmptyPathFailsWithoutWrite(t *testing.T) {
	p, w := newProcessor(t, assetmap.CollisionOverwrite)

	sum, err := p.Process(context.Background(), []assetmap.Event{
		assetmap.NewEvent(assetmap.EventAdd, ""),
	})
	assert.ErrorIs(t, err, assetmap.ErrInvalidPath)
	assert.Equal(t, 1, sum.Failed)
	assert.Empty(t, w.calls)
	assert.Empty(t, p.Tracker().Snapshot())
}
