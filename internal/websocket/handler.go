package websocket

import (
	"context"
	"encoding/json"
	"iter"
	"strings"

	"haskify-be/internal/constant"
	"haskify-be/internal/dto"
	"haskify-be/internal/pkg/serverutils"

	"github.com/google/uuid"
)

// Streamer produces a tutor reply fragment by fragment.
type Streamer interface {
	Stream(ctx context.Context, sessionId uuid.UUID, req *dto.AskRequest) iter.Seq2[string, error]
}

// ServeTutor answers every AskRequest read from conn with a sequence of
// fragment frames closed by a done or error frame. Blocks until the
// connection closes.
func ServeTutor(hub *Hub, conn Conn, sessionID uuid.UUID, tutor Streamer) {
	client := newClient(hub, conn, sessionID)
	if !hub.join(client) {
		conn.Close()
		return
	}

	go client.writePump()
	client.readPump(func(data []byte) {
		client.answer(tutor, data)
	})
}

func (c *Client) answer(tutor Streamer, data []byte) {
	var req dto.AskRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.pushFrame(dto.StreamFrame{Type: dto.StreamFrameError, Content: "Invalid request"})
		return
	}
	if errs := serverutils.ValidateRequest(req); len(errs) > 0 {
		c.pushFrame(dto.StreamFrame{Type: dto.StreamFrameError, Content: strings.Join(errs, "; ")})
		return
	}

	for fragment, err := range tutor.Stream(context.Background(), c.SessionID, &req) {
		if err != nil {
			c.Hub.logger.Error("HUB", "Tutor stream failed", map[string]interface{}{
				"session_id": c.SessionID,
				"error":      err.Error(),
			})
			c.pushFrame(dto.StreamFrame{Type: dto.StreamFrameError, Content: constant.TutorFailureReply})
			return
		}
		if !c.pushFrame(dto.StreamFrame{Type: dto.StreamFrameFragment, Content: fragment}) {
			// client went away; stop forwarding
			return
		}
	}
	c.pushFrame(dto.StreamFrame{Type: dto.StreamFrameDone})
}

func (c *Client) pushFrame(frame dto.StreamFrame) bool {
	data, err := json.Marshal(frame)
	if err != nil {
		return false
	}
	return c.push(data)
}
