package kiss

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSlave(name string) (*os.File, error) {
	return os.OpenFile(name, os.O_RDWR, 0)
}

func TestPTYSinkRoundTripsFrameToSlave(t *testing.T) {
	received := make(chan struct {
		port int
		data []byte
	}, 1)
	s, err := OpenPTYSink(func(port int, p []byte) {
		received <- struct {
			port int
			data []byte
		}{port, p}
	})
	require.NoError(t, err)
	defer s.Close()

	go func() {
		f, err := openSlave(s.Name())
		if err != nil {
			return
		}
		defer f.Close()
		_, _ = f.Write(EncodeDataFrame(1, []byte("hi")))
	}()

	select {
	case got := <-received:
		assert.Equal(t, 1, got.port)
		assert.Equal(t, "hi", string(got.data))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
	}
}
