package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"boardsync/internal/access"
	"boardsync/internal/auth"
	"boardsync/internal/board"
	"boardsync/internal/hub"
	"boardsync/internal/model"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WebSocketHandler drives one board subscription per connection:
// authenticate, check membership, send the full snapshot, then apply
// inbound actions to the store and fan them out to the other sessions.
type WebSocketHandler struct {
	Hub         *hub.Hub
	Store       *board.Store
	Memberships access.Memberships
	TokenConfig auth.TokenConfig
}

func (h *WebSocketHandler) Serve(c *gin.Context) {
	tokenString := auth.TokenFromRequest(c.Request)
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	claims, err := auth.VerifyToken(tokenString, h.TokenConfig)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	boardID := c.Param("boardId")
	meta, err := h.Store.GetBoard(boardID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return
	}
	if !h.Memberships.IsMember(claims.UserID, meta.ProjectID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws: upgrade failed: %v", err)
		return
	}

	sess := h.Hub.Register(boardID, claims.UserID)
	defer func() {
		h.Hub.Unregister(sess.ID)
		_ = ws.Close()
	}()

	// The snapshot is written directly, before the write pump starts
	// draining the queue, so the sync frame always reaches the client
	// ahead of any broadcast that raced with registration. A shape that
	// lands in both is collapsed by the client's id set.
	snapshot, err := h.Store.GetSnapshot(boardID)
	if err != nil {
		return
	}
	syncFrame, err := model.EncodeMessage(model.MessageSync, model.SyncPayload(snapshot))
	if err != nil {
		log.Printf("ws: encode sync for board %s: %v", boardID, err)
		return
	}
	ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := ws.WriteMessage(websocket.TextMessage, syncFrame); err != nil {
		return
	}

	go writePump(ws, sess)
	h.readPump(ws, sess)
}

func (h *WebSocketHandler) readPump(ws *websocket.Conn, sess *hub.Session) {
	ws.SetReadLimit(maxMessageSize)
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("ws: session %s read: %v", sess.ID, err)
			}
			return
		}

		var msg model.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("ws: session %s: malformed message dropped: %v", sess.ID, err)
			continue
		}
		h.dispatch(sess, msg)
	}
}

// dispatch applies one inbound action. Invalid actions are dropped,
// never fatal to the connection.
func (h *WebSocketHandler) dispatch(sess *hub.Session, msg model.Message) {
	switch msg.Type {
	case model.MessageDraw:
		var payload model.DrawPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			log.Printf("ws: session %s: bad draw payload dropped: %v", sess.ID, err)
			return
		}
		shape := payload.Object
		shape.CreatedBy = sess.UserID
		_, added, err := h.Store.AppendShape(sess.BoardID, shape)
		if err != nil {
			if errors.Is(err, board.ErrInvalidShape) {
				log.Printf("ws: session %s: invalid shape dropped: %v", sess.ID, err)
				return
			}
			log.Printf("ws: session %s: draw failed: %v", sess.ID, err)
			return
		}
		if !added {
			// Retried send of a shape already on the board.
			return
		}
		h.broadcast(sess, model.MessageDraw, model.DrawPayload{Object: shape})

	case model.MessageDelete:
		var payload model.DeletePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.ObjectID == "" {
			log.Printf("ws: session %s: bad delete payload dropped", sess.ID)
			return
		}
		if _, err := h.Store.RemoveShape(sess.BoardID, payload.ObjectID); err != nil {
			log.Printf("ws: session %s: delete failed: %v", sess.ID, err)
			return
		}
		h.broadcast(sess, model.MessageDelete, payload)

	case model.MessageClear:
		if _, err := h.Store.Clear(sess.BoardID); err != nil {
			log.Printf("ws: session %s: clear failed: %v", sess.ID, err)
			return
		}
		h.broadcast(sess, model.MessageClear, struct{}{})

	default:
		log.Printf("ws: session %s: unknown message type %q dropped", sess.ID, msg.Type)
	}
}

func (h *WebSocketHandler) broadcast(sender *hub.Session, msgType string, payload any) {
	frame, err := model.EncodeMessage(msgType, payload)
	if err != nil {
		log.Printf("ws: encode %s broadcast: %v", msgType, err)
		return
	}
	h.Hub.Broadcast(sender.BoardID, frame, sender.ID)
}

// writePump drains the session queue onto the wire, coalescing backlog
// into one newline-delimited frame, and keeps the connection alive with
// pings. Runs until the session queue closes or a write fails.
func writePump(ws *websocket.Conn, sess *hub.Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = ws.Close()
	}()

	out := sess.Outbound()
	for {
		select {
		case frame, ok := <-out:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				msg := websocket.FormatCloseMessage(sess.CloseCode(), "")
				_ = ws.WriteMessage(websocket.CloseMessage, msg)
				return
			}

			w, err := ws.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(frame)
			backlog := len(out)
			for i := 0; i < backlog; i++ {
				next, ok := <-out
				if !ok {
					break
				}
				w.Write([]byte{'\n'})
				w.Write(next)
			}
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
