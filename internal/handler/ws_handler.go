package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/nirwairkumar/nkc-assess-backend/internal/middleware"
	"github.com/nirwairkumar/nkc-assess-backend/internal/model"
	"github.com/nirwairkumar/nkc-assess-backend/internal/service"
	"github.com/nirwairkumar/nkc-assess-backend/internal/session"
	ws "github.com/nirwairkumar/nkc-assess-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a live session over WebSocket: answer saves,
// navigation, heartbeats and violation reports with immediate state
// feedback.
type WSHandler struct {
	sessions *service.SessionService
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessions *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessions: sessions,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/tests/:test_id/stream
// Upgrades to WebSocket for real-time session interaction. The session
// must already be open (and past the resume prompt) via REST.
func (h *WSHandler) SessionStream(c *gin.Context) {
	id := middleware.GetIdentity(c)
	if id == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid test ID"})
		return
	}

	ctrl, err := h.sessions.Controller(testID, id.UserID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no live session for this test"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("user_id", id.UserID).
		Str("test_id", testID.String()).
		Logger()

	wsLog.Info().Msg("Candidate connected")

	// Initial state push so the client can reconcile after a reconnect.
	h.writeState(conn, ctrl)

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}

		ctx := c.Request.Context()

		switch msg.Action {
		case ws.ActionAnswer:
			h.handleAnswer(ctx, conn, ctrl, &msg)
		case ws.ActionClear:
			h.reply(conn, ctrl.ClearAnswer(ctx, msg.QID), "cleared")
		case ws.ActionMark:
			h.reply(conn, ctrl.ToggleMarkForReview(ctx, msg.QID), "toggled")
		case ws.ActionNavigate:
			h.reply(conn, ctrl.Navigate(ctx, msg.Index), "moved")
		case ws.ActionHeartbeat:
			ctrl.Heartbeat(ctx)
			h.writeState(conn, ctrl)
		case ws.ActionViolation:
			h.handleViolation(ctx, conn, ctrl, testID, id.UserID, &msg, wsLog)
		case ws.ActionSubmit:
			done := h.handleSubmit(ctx, conn, ctrl, testID, id.UserID, wsLog)
			if done {
				return
			}
		case ws.ActionPing:
			ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			ws.WriteError(conn, "unknown action: "+string(msg.Action))
		}

		// The countdown can expire mid-connection and auto-submit; tell
		// the client as soon as any interaction surfaces it.
		if ctrl.Status() == model.StatusSubmitted {
			h.writeGraded(conn, ctrl)
			h.sessions.Release(testID, id.UserID)
			return
		}
	}
}

// handleAnswer decodes the answer value and stores it. The value field
// carries JSON (string or string array); a bare string is accepted as a
// single-choice answer for shorthand.
func (h *WSHandler) handleAnswer(ctx context.Context, conn *websocket.Conn, ctrl *session.Controller, msg *ws.RequestPayload) {
	if msg.QID == "" || msg.Value == "" {
		ws.WriteError(conn, "q_id and value are required")
		return
	}

	var value model.AnswerValue
	if err := json.Unmarshal([]byte(msg.Value), &value); err != nil {
		value = model.SingleAnswer(msg.Value)
	}

	h.reply(conn, ctrl.SelectAnswer(ctx, msg.QID, value), "saved")
}

func (h *WSHandler) handleViolation(ctx context.Context, conn *websocket.Conn, ctrl *session.Controller, testID uuid.UUID, userID string, msg *ws.RequestPayload, wsLog zerolog.Logger) {
	kind := session.ViolationKind(msg.Kind)
	if kind != session.ViolationVisibilityHidden && kind != session.ViolationFullscreenLost {
		ws.WriteError(conn, "unknown violation kind: "+msg.Kind)
		return
	}

	before := ctrl.State().ViolationCount
	v := session.Violation{Kind: kind, At: time.Now()}
	if err := ctrl.HandleViolation(ctx, v); err != nil {
		wsLog.Warn().Err(err).Str("kind", msg.Kind).Msg("Violation handling failed")
		ws.WriteError(conn, "violation handling failed")
		return
	}

	state := ctrl.State()
	if state.Status == model.StatusSubmitted {
		h.writeGraded(conn, ctrl)
		h.sessions.Release(testID, userID)
		return
	}

	warning, counted := warningFor(msg.Kind, before, state.ViolationCount, ctrl.Test().Policy.MaxViolations)
	if !counted {
		// The event was ignored (policy off, or fullscreen not required).
		// Acknowledge with plain state so the client is not warned over
		// nothing.
		h.writeState(conn, ctrl)
		return
	}
	ws.WriteTyped(conn, warning)
}

// warningFor builds the warning event for a counted violation. An
// unchanged count means the monitor ignored the event and no warning is
// owed.
func warningFor(kind string, before, after, max int) (ws.WarningResponse, bool) {
	if after == before {
		return ws.WarningResponse{}, false
	}
	remaining := max - after
	if remaining < 0 {
		remaining = 0
	}
	return ws.WarningResponse{
		Event:     ws.EventWarning,
		Kind:      kind,
		Count:     after,
		Remaining: remaining,
	}, true
}

// handleSubmit finalizes the session. Returns true when the stream should
// end.
func (h *WSHandler) handleSubmit(ctx context.Context, conn *websocket.Conn, ctrl *session.Controller, testID uuid.UUID, userID string, wsLog zerolog.Logger) bool {
	if err := ctrl.Submit(ctx, model.SubmitReasonUser); err != nil {
		wsLog.Error().Err(err).Msg("Submit failed")
		ws.WriteError(conn, "submission failed, session preserved")
		return false
	}

	h.writeGraded(conn, ctrl)
	h.sessions.Release(testID, userID)
	return true
}

func (h *WSHandler) reply(conn *websocket.Conn, err error, status string) {
	if err != nil {
		ws.WriteError(conn, err.Error())
		return
	}
	ws.WriteTyped(conn, ws.SavedResponse{Event: ws.EventSaved, Status: status})
}

func (h *WSHandler) writeState(conn *websocket.Conn, ctrl *session.Controller) {
	state := ctrl.State()
	ws.WriteTyped(conn, ws.StateResponse{
		Event:         ws.EventState,
		Status:        string(state.Status),
		TimeRemaining: state.TimeRemaining,
		CurrentIndex:  state.CurrentQuestionIndex,
	})
}

func (h *WSHandler) writeGraded(conn *websocket.Conn, ctrl *session.Controller) {
	attempt := ctrl.Attempt()
	if attempt == nil {
		return
	}
	ws.WriteTyped(conn, ws.GradedResponse{
		Event:       ws.EventGraded,
		Status:      "completed",
		Score:       attempt.Result.Score,
		Correct:     attempt.Result.CorrectCount,
		Wrong:       attempt.Result.WrongCount,
		Unattempted: attempt.Result.UnattemptedCount,
	})
}
