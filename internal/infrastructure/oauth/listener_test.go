package oauth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ifconnect/client/internal/domain/social"
)

func TestWaitReturnsFirstCallback(t *testing.T) {
	listener := NewListener("127.0.0.1:0", zap.NewNop())
	require.NoError(t, listener.Listen())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type result struct {
		cb  *Callback
		err error
	}
	done := make(chan result, 1)
	go func() {
		cb, err := listener.Wait(ctx)
		done <- result{cb, err}
	}()

	url := fmt.Sprintf("http://%s/callback?token=tok-1&userId=12", listener.Addr())
	resp, err := pollGet(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	page, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(page), "Signed in")

	r := <-done
	require.NoError(t, r.err)
	assert.Equal(t, social.UserID(12), r.cb.UserID)
	assert.Equal(t, "tok-1", r.cb.Token)
}

func TestCallbackRejectsMissingParams(t *testing.T) {
	listener := NewListener("127.0.0.1:0", zap.NewNop())
	require.NoError(t, listener.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	waitDone := make(chan struct{})
	go func() {
		listener.Wait(ctx)
		close(waitDone)
	}()

	resp, err := pollGet(fmt.Sprintf("http://%s/callback?token=tok-1", listener.Addr()))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	cancel()
	select {
	case <-waitDone:
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not stop on cancel")
	}
}

func TestWaitStopsOnContextCancel(t *testing.T) {
	listener := NewListener("127.0.0.1:0", zap.NewNop())
	require.NoError(t, listener.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := listener.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// pollGet retries until the listener goroutine is serving.
func pollGet(url string) (*http.Response, error) {
	var resp *http.Response
	var err error
	for i := 0; i < 50; i++ {
		resp, err = http.Get(url)
		if err == nil {
			return resp, nil
		}
		time.Sleep(20 * time.Millisecond)
	}
	return nil, err
}
