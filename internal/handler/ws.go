package handler

import (
	"context"
	"errors"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5"
	"github.com/valyala/fasthttp"

	"github.com/jss367/convora/internal/middleware"
	"github.com/jss367/convora/internal/model"
	"github.com/jss367/convora/internal/service"
)

// upgrader accepts any origin: identity is an anonymous session token and
// the browser client may be served from a different host entirely.
var upgrader = websocket.FastHTTPUpgrader{
	CheckOrigin: func(ctx *fasthttp.RequestCtx) bool { return true },
}

type WSHandler struct {
	hub       *service.Hub
	questions *service.QuestionService
	votes     *service.VoteService
	identity  service.IdentityProvider
}

func NewWSHandler(hub *service.Hub, questions *service.QuestionService, votes *service.VoteService, identity service.IdentityProvider) *WSHandler {
	return &WSHandler{hub: hub, questions: questions, votes: votes, identity: identity}
}

// Serve handles GET /ws — upgrades the connection and runs its read loop
// until disconnect.
func (h *WSHandler) Serve(c fiber.Ctx) error {
	return upgrader.Upgrade(c.RequestCtx(), h.handle)
}

// handle owns one connection: a writer goroutine drains the session's
// outbound channel, the read loop dispatches inbound events. Leave always
// runs on the way out, so a connection that dies mid-operation never
// lingers in any room; its in-flight mutations still commit and broadcast
// to whoever remains.
func (h *WSHandler) handle(conn *websocket.Conn) {
	sess := service.NewSession(h.identity.Issue())
	defer h.hub.Leave(sess)

	Metrics.WSSessions.Inc()
	defer Metrics.WSSessions.Dec()

	middleware.Logger.Info().Str("user_id", sess.UserID).Msg("ws connected")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		for {
			select {
			case msg := <-sess.Outbound():
				if err := conn.WriteJSON(msg); err != nil {
					sess.Close()
					return
				}
			case <-sess.Done():
				// Unblocks the read loop below.
				conn.Close()
				return
			}
		}
	}()

	// The issued token lets a fresh client vote without inventing its own.
	sess.Send(model.ServerMessage{Event: model.EventSession, UserID: sess.UserID})

	for {
		var msg model.ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			middleware.Logger.Info().Str("user_id", sess.UserID).Msg("ws disconnected")
			sess.Close()
			return
		}
		h.dispatch(ctx, sess, &msg)
	}
}

// dispatch switches on the event before anything else, so an unrecognized
// event is reported as such no matter what else the frame carries.
func (h *WSHandler) dispatch(ctx context.Context, sess *service.Session, msg *model.ClientMessage) {
	switch msg.Event {
	case model.EventJoinDiscussion:
		topic, errMsg := middleware.ValidateTopic(msg.Topic)
		if errMsg != "" {
			sess.Send(model.NewErrorMessage(errMsg))
			return
		}
		h.hub.Join(ctx, sess, topic)

	case model.EventAddQuestion:
		topic, errMsg := middleware.ValidateTopic(msg.Topic)
		if errMsg != "" {
			sess.Send(model.NewErrorMessage(errMsg))
			return
		}
		h.addQuestion(ctx, sess, topic, msg.Question)

	case model.EventVote:
		topic, errMsg := middleware.ValidateTopic(msg.Topic)
		if errMsg != "" {
			sess.Send(model.NewErrorMessage(errMsg))
			return
		}
		h.vote(ctx, sess, topic, msg)

	default:
		sess.Send(model.NewErrorMessage("unknown event"))
	}
}

func (h *WSHandler) addQuestion(ctx context.Context, sess *service.Session, topic string, spec *model.QuestionSpec) {
	if spec == nil {
		sess.Send(model.NewErrorMessage("question is required"))
		return
	}
	if errMsg := middleware.ValidateOptions(spec.Options); errMsg != "" {
		sess.Send(model.NewErrorMessage(errMsg))
		return
	}
	if _, errMsg := middleware.ValidateQuestionText(spec.Text); errMsg != "" {
		sess.Send(model.NewErrorMessage(errMsg))
		return
	}

	if _, err := h.questions.Create(ctx, topic, spec); err != nil {
		var vErr *model.ValidationError
		if errors.As(err, &vErr) {
			sess.Send(model.NewErrorMessage(vErr.Message))
		} else {
			middleware.Logger.Error().Err(err).Str("topic", topic).Msg("add question failed")
			sess.Send(model.NewErrorMessage("Failed to add question"))
		}
		return
	}

	Metrics.QuestionsCreated.Inc()
	h.broadcast(ctx, topic, sess)
}

func (h *WSHandler) vote(ctx context.Context, sess *service.Session, topic string, msg *model.ClientMessage) {
	userID := msg.UserID
	if userID == "" {
		userID = sess.UserID
	}
	userID, errMsg := middleware.ValidateUserID(userID)
	if errMsg != "" {
		sess.Send(model.NewErrorMessage(errMsg))
		return
	}
	if msg.QuestionID == 0 || len(msg.Value) == 0 {
		sess.Send(model.NewErrorMessage("questionId and value are required"))
		return
	}

	result, err := h.votes.Cast(ctx, topic, msg.QuestionID, msg.Value, userID)
	if err != nil {
		var vErr *model.ValidationError
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			sess.Send(model.NewErrorMessage("Question not found"))
		case errors.As(err, &vErr):
			sess.Send(model.NewErrorMessage(vErr.Message))
		default:
			middleware.Logger.Error().Err(err).Str("topic", topic).Msg("vote failed")
			sess.Send(model.NewErrorMessage("Failed to handle vote"))
		}
		return
	}

	Metrics.VotesTotal.WithLabelValues(string(result)).Inc()

	// The ack is what lets the client clear its pending (e.g. mid-drag
	// slider) state; snapshot arrival alone never does.
	sess.Send(model.ServerMessage{
		Event:      model.EventVoteAck,
		QuestionID: msg.QuestionID,
		Result:     result,
	})

	h.broadcast(ctx, topic, sess)
}

func (h *WSHandler) broadcast(ctx context.Context, topic string, trigger *service.Session) {
	start := time.Now()
	if err := h.hub.Broadcast(ctx, topic, trigger); err != nil {
		return
	}
	Metrics.BroadcastDuration.Observe(time.Since(start).Seconds())
}
