package txqueue_test

import (
	"testing"
	"time"

	"github.com/n7dwg/direwolf-go/internal/ax25"
	"github.com/n7dwg/direwolf-go/internal/txqueue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(info string) ax25.Frame {
	return ax25.Frame{
		Dest:   ax25.Address{Call: "APZ001"},
		Source: ax25.Address{Call: "N0CALL"},
		Info:   []byte(info),
	}
}

func TestFIFOOrderWithinPriority(t *testing.T) {
	q := txqueue.New()
	q.Append(txqueue.Lo, frame("1"))
	q.Append(txqueue.Lo, frame("2"))
	q.Append(txqueue.Lo, frame("3"))

	for _, want := range []string{"1", "2", "3"} {
		f, ok := q.Remove(txqueue.Lo)
		require.True(t, ok)
		assert.Equal(t, want, string(f.Info))
	}
	_, ok := q.Remove(txqueue.Lo)
	assert.False(t, ok)
}

func TestHiAndLoAreIndependentFIFOs(t *testing.T) {
	q := txqueue.New()
	q.Append(txqueue.Lo, frame("lo1"))
	q.Append(txqueue.Hi, frame("hi1"))

	hi, ok := q.Remove(txqueue.Hi)
	require.True(t, ok)
	assert.Equal(t, "hi1", string(hi.Info))

	lo, ok := q.Remove(txqueue.Lo)
	require.True(t, ok)
	assert.Equal(t, "lo1", string(lo.Info))
}

func TestWaitWhileEmptyWakesOnAppend(t *testing.T) {
	q := txqueue.New()
	done := make(chan struct{})
	go func() {
		q.WaitWhileEmpty()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("WaitWhileEmpty returned before anything was appended")
	case <-time.After(20 * time.Millisecond):
	}

	q.Append(txqueue.Lo, frame("x"))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitWhileEmpty did not wake up after Append")
	}
}

func TestPeekDoesNotRemove(t *testing.T) {
	q := txqueue.New()
	q.Append(txqueue.Hi, frame("peek-me"))

	f, ok := q.Peek(txqueue.Hi)
	require.True(t, ok)
	assert.Equal(t, "peek-me", string(f.Info))
	assert.False(t, q.IsEmpty())
}
