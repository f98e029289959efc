package v1

import (
	"net/http"

	"pcd-jobs-backend/internal/delivery/http/middleware"
	"pcd-jobs-backend/internal/delivery/http/response"
	"pcd-jobs-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type ConversationHandler struct {
	conversationUC domain.ConversationUsecase
}

func NewConversationHandler(protected *gin.RouterGroup, conversationUC domain.ConversationUsecase, limit gin.HandlerFunc) {
	handler := &ConversationHandler{conversationUC: conversationUC}

	messages := protected.Group("/applications/:id/messages")
	{
		messages.GET("", handler.List)
		messages.POST("", limit, handler.Send)
		messages.POST("/read", handler.MarkRead)
		messages.GET("/unread", handler.Unread)
	}
}

// List godoc
// @Summary      List an application's messages
// @Tags         messages
// @Produce      json
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  response.Response{data=[]domain.Message}
// @Failure      403  {object}  response.Response
// @Router       /applications/{id}/messages [get]
// @Security     BearerAuth
func (h *ConversationHandler) List(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	messages, err := h.conversationUC.ListMessages(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Messages", messages)
}

// Send godoc
// @Summary      Send a message
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        id       path      string                   true  "Application ID"
// @Param        message  body      domain.SendMessageInput  true  "Message"
// @Success      201      {object}  response.Response{data=domain.Message}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /applications/{id}/messages [post]
// @Security     BearerAuth
func (h *ConversationHandler) Send(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req domain.SendMessageInput
	if !bindJSON(c, &req) {
		return
	}

	msg, err := h.conversationUC.SendMessage(c.Request.Context(), middleware.CurrentActor(c), id, req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Message sent", msg)
}

// MarkRead godoc
// @Summary      Mark the conversation read
// @Description  Marks every message read for the caller's side
// @Tags         messages
// @Produce      json
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  response.Response
// @Router       /applications/{id}/messages/read [post]
// @Security     BearerAuth
func (h *ConversationHandler) MarkRead(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	n, err := h.conversationUC.MarkRead(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Messages marked as read", gin.H{"marked": n})
}

// Unread godoc
// @Summary      Unread message count
// @Tags         messages
// @Produce      json
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  response.Response
// @Router       /applications/{id}/messages/unread [get]
// @Security     BearerAuth
func (h *ConversationHandler) Unread(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	n, err := h.conversationUC.UnreadCount(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Unread messages", gin.H{"unread": n})
}
