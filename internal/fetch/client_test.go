package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ipv4Server struct {
	URL string
	srv *http.Server
	ln  net.Listener
}

func newIPv4Server(t *testing.T, handler http.Handler) *ipv4Server {
	t.Helper()
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		if errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EPERM) {
			t.Skipf("skipping test: cannot open local listener (%v)", err)
		}
		t.Fatalf("listen tcp4: %v", err)
	}
	srv := &http.Server{Handler: handler}
	s := &ipv4Server{URL: "http://" + ln.Addr().String(), srv: srv, ln: ln}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(fmt.Sprintf("test server serve: %v", err))
		}
	}()
	t.Cleanup(s.Close)
	return s
}

func (s *ipv4Server) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = s.srv.Shutdown(ctx)
}

// sequenceServer answers with statuses in order, repeating the last one.
func sequenceServer(t *testing.T, statuses []int, headers []http.Header, body string) (*ipv4Server, *int32) {
	t.Helper()
	var idx int32
	s := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		i := int(atomic.AddInt32(&idx, 1)) - 1
		if i >= len(statuses) {
			i = len(statuses) - 1
		}
		if headers != nil && i < len(headers) {
			for k, vals := range headers[i] {
				for _, v := range vals {
					w.Header().Add(k, v)
				}
			}
		}
		w.WriteHeader(statuses[i])
		if statuses[i] < 300 {
			_, _ = w.Write([]byte(body))
			return
		}
		_, _ = w.Write([]byte("try later"))
	}))
	return s, &idx
}

func testClient(attempts int) (*Client, *[]time.Duration) {
	c := NewClient(Options{Timeout: 2 * time.Second, MaxAttempts: attempts, BaseDelay: 10 * time.Millisecond, MaxDelay: 40 * time.Millisecond})
	var waits []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return c, &waits
}

func TestGetRetriesServerErrors(t *testing.T) {
	srv, hits := sequenceServer(t, []int{503, 500, 200}, nil, "a,b\n1,2\n")
	c, waits := testClient(3)
	body, err := c.Get(context.Background(), srv.URL+"/listings.csv")
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(body))
	assert.EqualValues(t, 3, atomic.LoadInt32(hits))
	require.Len(t, *waits, 2)
	for _, w := range *waits {
		assert.LessOrEqual(t, w, 40*time.Millisecond)
	}
}

func TestGetHonorsRetryAfter(t *testing.T) {
	h := http.Header{}
	h.Set("Retry-After", "2")
	srv, _ := sequenceServer(t, []int{429, 200}, []http.Header{h, nil}, "ok")
	c, waits := testClient(3)
	body, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, []time.Duration{2 * time.Second}, *waits)
}

func TestGetGivesUpWithTypedError(t *testing.T) {
	srv, hits := sequenceServer(t, []int{429}, nil, "")
	c, _ := testClient(2)
	_, err := c.Get(context.Background(), srv.URL)
	var rl *RateLimitError
	require.True(t, errors.As(err, &rl), "got %v", err)
	assert.Equal(t, http.StatusTooManyRequests, rl.StatusCode)
	assert.EqualValues(t, 2, atomic.LoadInt32(hits))
}

func TestGetDoesNotRetryNotFound(t *testing.T) {
	srv, hits := sequenceServer(t, []int{404, 200}, nil, "")
	c, waits := testClient(3)
	_, err := c.Get(context.Background(), srv.URL+"/missing.jsonl")
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf), "got %v", err)
	var se *StatusError
	assert.True(t, errors.As(err, &se))
	assert.EqualValues(t, 1, atomic.LoadInt32(hits))
	assert.Empty(t, *waits)
}

func TestGetUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test: cannot open local listener (%v)", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	c, waits := testClient(2)
	_, err = c.Get(context.Background(), "http://"+addr+"/x.csv")
	var ue *UnreachableError
	require.True(t, errors.As(err, &ue), "got %v", err)
	assert.Equal(t, addr, ue.Host)
	assert.Len(t, *waits, 1)
}

func TestGetRejectsOtherSchemes(t *testing.T) {
	c, _ := testClient(1)
	_, err := c.Get(context.Background(), "ftp://example.com/x.csv")
	assert.Error(t, err)
}

func TestParseRetryAfter(t *testing.T) {
	s, err := parseRetryAfterSeconds("7")
	require.NoError(t, err)
	assert.Equal(t, 7, s)
	_, err = parseRetryAfterSeconds("soon")
	assert.Error(t, err)
}
