package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/ayusman/abhinaya/internal/capture"
	"github.com/ayusman/abhinaya/internal/landmark"
	"github.com/ayusman/abhinaya/internal/reference"
	"github.com/ayusman/abhinaya/internal/server/api"
	"github.com/ayusman/abhinaya/internal/store"
)

// MaxSessionFrames bounds one attempt recorded over a session socket.
const MaxSessionFrames = reference.MaxFrames

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Session message types.
const (
	msgStart  = "start"
	msgFrame  = "frame"
	msgFinish = "finish"
	msgResult = "result"
	msgError  = "error"
)

// sessionMessage is the envelope of every client message.
//
//	{"type":"start","pose_indices":[...]}    optional, resets the attempt
//	{"type":"frame","frame":{...}}           appends one landmark frame
//	{"type":"finish","reference_id":"..."}   scores and starts a new attempt
type sessionMessage struct {
	Type        string          `json:"type"`
	Frame       *landmark.Frame `json:"frame,omitempty"`
	ReferenceID string          `json:"reference_id,omitempty"`
	PoseIndices []int           `json:"pose_indices,omitempty"`
}

type sessionReply struct {
	Type   string              `json:"type"`
	Result *api.ResultResponse `json:"result,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// SessionHandler records attempts streamed by a browser-side detector over
// a WebSocket and scores them on request.
type SessionHandler struct {
	eval api.Evaluator
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(eval api.Evaluator) *SessionHandler {
	return &SessionHandler{eval: eval}
}

// ServeHTTP handles WebSocket upgrade requests. Each connection owns one
// recorder at a time.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	skeleton := landmark.LiveSkeleton
	rec := capture.NewRecorder(skeleton, MaxSessionFrames)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg sessionMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			reply(conn, sessionReply{Type: msgError, Error: "invalid message"})
			continue
		}

		switch msg.Type {
		case msgStart:
			skeleton = landmark.LiveSkeleton
			if len(msg.PoseIndices) > 0 {
				s, err := landmark.SkeletonFromPoseIndices("session", msg.PoseIndices)
				if err != nil {
					reply(conn, sessionReply{Type: msgError, Error: err.Error()})
					continue
				}
				skeleton = s
			}
			rec = capture.NewRecorder(skeleton, MaxSessionFrames)

		case msgFrame:
			if msg.Frame == nil {
				reply(conn, sessionReply{Type: msgError, Error: "frame message without frame"})
				continue
			}
			// Out-of-order frames are dropped silently.
			if _, err := rec.Append(*msg.Frame); err != nil {
				reply(conn, sessionReply{Type: msgError, Error: err.Error()})
			}

		case msgFinish:
			live := rec.Freeze()
			rec = capture.NewRecorder(skeleton, MaxSessionFrames)

			out, err := h.eval.Evaluate(msg.ReferenceID, live)
			if err != nil {
				text := "failed to score attempt"
				if errors.Is(err, store.ErrNotFound) {
					text = "reference not found"
				}
				log.Printf("session: scoring against %q: %v", msg.ReferenceID, err)
				reply(conn, sessionReply{Type: msgError, Error: text})
				continue
			}
			res := api.NewResultResponse(out)
			reply(conn, sessionReply{Type: msgResult, Result: &res})

		default:
			reply(conn, sessionReply{Type: msgError, Error: "unknown message type"})
		}
	}
}

func reply(conn *websocket.Conn, r sessionReply) {
	if err := conn.WriteJSON(r); err != nil {
		log.Printf("websocket write error: %v", err)
	}
}
