package task

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGroupCancelledByFirstError(t *testing.T) {
	var tg = NewGroup(context.Background())

	tg.Queue("blocks", func() error {
		<-tg.Context().Done()
		return nil
	})
	tg.Queue("fails", func() error { return errors.New("whoops") })
	tg.Queue("succeeds", func() error { return nil })

	require.Equal(t, []string{"blocks", "fails", "succeeds"}, tg.Descriptions())

	tg.GoRun()
	require.EqualError(t, tg.Wait(), "fails: whoops")
	require.Error(t, tg.Context().Err())
}

func TestGroupCancel(t *testing.T) {
	var tg = NewGroup(context.Background())

	for _, desc := range []string{"one", "two"} {
		tg.Queue(desc, func() error {
			<-tg.Context().Done()
			return nil
		})
	}
	tg.GoRun()
	tg.Cancel()

	require.NoError(t, tg.Wait())
}

func TestGroupCancelledByParent(t *testing.T) {
	var ctx, cancel = context.WithCancel(context.Background())
	var tg = NewGroup(ctx)

	tg.Queue("waits", func() error {
		<-tg.Context().Done()
		return tg.Context().Err()
	})
	tg.GoRun()
	cancel()

	require.EqualError(t, tg.Wait(), "waits: context canceled")
}

func TestGroupMisuse(t *testing.T) {
	var tg = NewGroup(context.Background())

	require.PanicsWithValue(t, "Wait called before GoRun", func() { _ = tg.Wait() })
	tg.GoRun()
	require.PanicsWithValue(t, "GoRun already called", tg.GoRun)
	require.PanicsWithValue(t, "Queue called after GoRun", func() { tg.Queue("late", nil) })
	require.NoError(t, tg.Wait())
}
