package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
	"sync"
	"testing"
	"time"

	"haskify-be/internal/constant"
	"haskify-be/internal/dto"
	"haskify-be/internal/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errConnClosed = errors.New("connection closed")

type fakeConn struct {
	in     chan []byte
	closed chan struct{}
	once   sync.Once

	mu          sync.Mutex
	frames      []dto.StreamFrame
	sawCloseMsg bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{in: make(chan []byte), closed: make(chan struct{})}
}

func (f *fakeConn) SetReadLimit(int64)                {}
func (f *fakeConn) SetReadDeadline(time.Time) error   { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error  { return nil }
func (f *fakeConn) SetPongHandler(func(string) error) {}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case data, ok := <-f.in:
		if !ok {
			return 0, nil, errConnClosed
		}
		return websocket.TextMessage, data, nil
	case <-f.closed:
		return 0, nil, errConnClosed
	}
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	select {
	case <-f.closed:
		return errConnClosed
	default:
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	switch messageType {
	case websocket.TextMessage:
		var frame dto.StreamFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			return err
		}
		f.frames = append(f.frames, frame)
	case websocket.CloseMessage:
		f.sawCloseMsg = true
	}
	return nil
}

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeConn) received() []dto.StreamFrame {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]dto.StreamFrame(nil), f.frames...)
}

type fakeStreamer struct {
	fragments []string
	err       error
}

func (s fakeStreamer) Stream(context.Context, uuid.UUID, *dto.AskRequest) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, f := range s.fragments {
			if !yield(f, nil) {
				return
			}
		}
		if s.err != nil {
			yield("", s.err)
		}
	}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := NewHub(nil, logger.NewNopLogger())
	go hub.Run(ctx)
	return hub
}

func serve(hub *Hub, conn *fakeConn, sessionID uuid.UUID, tutor Streamer) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		ServeTutor(hub, conn, sessionID, tutor)
		close(done)
	}()
	return done
}

func TestServeTutorStreamsFragments(t *testing.T) {
	hub := startHub(t)
	conn := newFakeConn()
	done := serve(hub, conn, uuid.New(), fakeStreamer{fragments: []string{"Try ", "range()."}})

	conn.in <- []byte(`{"query":"how do loops work?"}`)

	require.Eventually(t, func() bool { return len(conn.received()) == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []dto.StreamFrame{
		{Type: dto.StreamFrameFragment, Content: "Try "},
		{Type: dto.StreamFrameFragment, Content: "range()."},
		{Type: dto.StreamFrameDone},
	}, conn.received())
	assert.Equal(t, 1, hub.Connected())

	close(conn.in)
	require.Eventually(t, func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return hub.Connected() == 0 }, time.Second, 5*time.Millisecond)
}

func TestServeTutorRejectsInvalidRequests(t *testing.T) {
	hub := startHub(t)
	conn := newFakeConn()
	serve(hub, conn, uuid.New(), fakeStreamer{fragments: []string{"unused"}})

	conn.in <- []byte(`not json`)
	conn.in <- []byte(`{"query":""}`)

	require.Eventually(t, func() bool { return len(conn.received()) == 2 }, time.Second, 5*time.Millisecond)
	frames := conn.received()
	assert.Equal(t, dto.StreamFrame{Type: dto.StreamFrameError, Content: "Invalid request"}, frames[0])
	assert.Equal(t, dto.StreamFrameError, frames[1].Type)
	assert.Contains(t, frames[1].Content, "Query")
	conn.Close()
}

func TestServeTutorReportsProviderFailure(t *testing.T) {
	hub := startHub(t)
	conn := newFakeConn()
	serve(hub, conn, uuid.New(), fakeStreamer{fragments: []string{"partial"}, err: errors.New("boom")})

	conn.in <- []byte(`{"query":"why does my list index fail?"}`)

	require.Eventually(t, func() bool { return len(conn.received()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, dto.StreamFrame{Type: dto.StreamFrameError, Content: constant.TutorFailureReply}, conn.received()[1])
	conn.Close()
}

func TestHubDisconnectClosesSessionStreams(t *testing.T) {
	hub := startHub(t)
	sid := uuid.New()
	other := newFakeConn()
	conn := newFakeConn()
	done := serve(hub, conn, sid, fakeStreamer{})
	serve(hub, other, uuid.New(), fakeStreamer{})

	require.Eventually(t, func() bool { return hub.Connected() == 2 }, time.Second, 5*time.Millisecond)

	hub.Disconnect(context.Background(), sid)

	require.Eventually(t, func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return hub.Connected() == 1 }, time.Second, 5*time.Millisecond)

	conn.mu.Lock()
	assert.True(t, conn.sawCloseMsg)
	conn.mu.Unlock()
	other.Close()
}
