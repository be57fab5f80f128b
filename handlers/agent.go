package handlers

import (
	"context"
	"errors"
	"net/http"

	"wanderly/models"
	"wanderly/services/agent"
	"wanderly/services/checkpoint"
	"wanderly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TravelAgent is the part of agent.Agent the HTTP layer drives.
type TravelAgent interface {
	Chat(ctx context.Context, threadID, userID, text string, emit agent.Emitter) (*agent.TurnResult, error)
	Resume(ctx context.Context, ev models.PaymentEvent, emit agent.Emitter) (*agent.TurnResult, error)
	State(ctx context.Context, threadID string) (*models.TravelState, error)
	Reset(ctx context.Context, threadID string) error
	Orders(ctx context.Context, threadID string) ([]models.Order, error)
	Mermaid() string
}

type AgentHandler struct {
	Agent TravelAgent
}

func NewAgentHandler(a TravelAgent) *AgentHandler {
	return &AgentHandler{Agent: a}
}

// userID returns the authenticated subject, or "" on open deployments.
func userID(c *gin.Context) string {
	return c.GetString(utils.ContextUserIDKey)
}

// scopedThread namespaces a client thread id under the caller so users never share threads.
func scopedThread(c *gin.Context, threadID string) string {
	if uid := userID(c); uid != "" {
		return uid + ":" + threadID
	}
	return threadID
}

// agentErrorStatus maps agent errors to HTTP status codes.
func agentErrorStatus(err error) int {
	switch {
	case errors.Is(err, agent.ErrEmptyMessage),
		errors.Is(err, agent.ErrMissingThread),
		errors.Is(err, agent.ErrInvalidPaymentEv):
		return http.StatusBadRequest
	case errors.Is(err, agent.ErrNotInterrupted),
		errors.Is(err, agent.ErrPaymentMismatch):
		return http.StatusConflict
	case errors.Is(err, agent.ErrUnverifiedPay):
		return http.StatusForbidden
	case errors.Is(err, checkpoint.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func toChatResponse(res *agent.TurnResult) models.ChatResponse {
	return models.ChatResponse{
		ThreadID:    res.ThreadID,
		Replies:     res.Replies,
		Step:        res.Step,
		Interrupted: res.Interrupted,
		Next:        res.Next,
		Booking:     res.Booking,
	}
}

// ChatHandler runs one user turn and returns the assistant replies.
func (h *AgentHandler) ChatHandler(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid chat request", err.Error())
		return
	}

	threadID := scopedThread(c, req.ThreadID)
	res, err := h.Agent.Chat(c.Request.Context(), threadID, userID(c), req.Message, nil)
	if err != nil {
		utils.JSONError(c, agentErrorStatus(err), "Chat turn failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, toChatResponse(res))
}

// StreamHandler runs one user turn and streams the agent events as SSE.
// The last event is always "done", carrying either the result or the error.
func (h *AgentHandler) StreamHandler(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid chat request", err.Error())
		return
	}

	ctx := c.Request.Context()
	threadID := scopedThread(c, req.ThreadID)
	uid := userID(c)
	logger := getLogger(c)
	events := make(chan models.AgentEvent, 32)

	go func() {
		defer close(events)
		emit := func(ev models.AgentEvent) {
			select {
			case events <- ev:
			case <-ctx.Done():
			}
		}
		res, err := h.Agent.Chat(ctx, threadID, uid, req.Message, emit)
		done := models.AgentEvent{Type: models.EventDone}
		if err != nil {
			done.Content = err.Error()
			done.Data = map[string]any{"status": agentErrorStatus(err)}
		} else {
			resp := toChatResponse(res)
			done.Step = res.Step
			done.Data = map[string]any{"result": resp, "trace": res.Trace}
		}
		emit(done)
	}()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.SSEvent(ev.Type, ev)
			c.Writer.Flush()
		case <-ctx.Done():
			logger.Info("Stream client went away", zap.String("thread", threadID))
			return
		}
	}
}

// GetStateHandler returns the checkpointed conversation.
func (h *AgentHandler) GetStateHandler(c *gin.Context) {
	threadID := scopedThread(c, c.Param("threadID"))
	st, err := h.Agent.State(c.Request.Context(), threadID)
	if err != nil {
		utils.JSONError(c, agentErrorStatus(err), "Could not load conversation", err.Error())
		return
	}
	c.JSON(http.StatusOK, st)
}

// ResetStateHandler forgets the conversation.
func (h *AgentHandler) ResetStateHandler(c *gin.Context) {
	threadID := scopedThread(c, c.Param("threadID"))
	if err := h.Agent.Reset(c.Request.Context(), threadID); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Could not reset conversation", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"thread_id": c.Param("threadID"), "reset": true})
}

// OrdersHandler lists the orders locked or booked by the conversation.
func (h *AgentHandler) OrdersHandler(c *gin.Context) {
	threadID := scopedThread(c, c.Param("threadID"))
	orders, err := h.Agent.Orders(c.Request.Context(), threadID)
	if err != nil {
		utils.JSONError(c, agentErrorStatus(err), "Could not load orders", err.Error())
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"thread_id": c.Param("threadID"), "orders": orders})
}

func (h *AgentHandler) GraphHandler(c *gin.Context) {
	c.String(http.StatusOK, h.Agent.Mermaid())
}
