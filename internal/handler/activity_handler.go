package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pagebound/bookchat/internal/delivery"
	"github.com/pagebound/bookchat/internal/dto"
	"github.com/pagebound/bookchat/internal/service"
	"github.com/pagebound/bookchat/pkg/apperror"
	"github.com/pagebound/bookchat/pkg/response"
	"github.com/redis/go-redis/v9"
)

type ActivityHandler struct {
	service     service.ActivityService
	redisClient *redis.Client
	upgrader    websocket.Upgrader
}

func NewActivityHandler(service service.ActivityService, redisClient *redis.Client) *ActivityHandler {
	return &ActivityHandler{
		service:     service,
		redisClient: redisClient,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for now
			},
		},
	}
}

// REST Endpoints

func (h *ActivityHandler) List(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var query dto.ActivityListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ResponseError(c, apperror.ErrBadRequest)
		return
	}

	filter := service.ActivityListFilter{
		Category:   query.Filter,
		UnreadOnly: query.UnreadOnly,
		Limit:      query.Limit,
	}
	if query.Cursor != "" {
		before, err := time.Parse(time.RFC3339Nano, query.Cursor)
		if err != nil {
			response.ResponseError(c, apperror.ErrBadRequest)
			return
		}
		filter.Before = &before
	}

	activities, err := h.service.List(c.Request.Context(), userID, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	data := make([]dto.ActivityResponse, 0, len(activities))
	for i := range activities {
		data = append(data, dto.NewActivityResponse(&activities[i]))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	meta := dto.CursorMeta{HasMore: len(activities) == limit}
	if meta.HasMore {
		meta.NextCursor = activities[len(activities)-1].CreatedAt.Format(time.RFC3339Nano)
	}

	c.JSON(http.StatusOK, dto.ActivityListResponse{Data: data, Meta: meta})
}

func (h *ActivityHandler) MarkRead(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	activityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrBadRequest)
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), activityID, userID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "marked as read"})
}

func (h *ActivityHandler) MarkAllRead(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.MarkAllRead(c.Request.Context(), userID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "all activities marked as read"})
}

func (h *ActivityHandler) UnreadCount(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	count, err := h.service.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// WebSocket Endpoint

// HandleWebSocket bridges the user's push channel to a live socket:
// whatever the fan-out pipeline publishes for this user is forwarded as-is.
func (h *ActivityHandler) HandleWebSocket(c *gin.Context) {
	userIDStr := c.GetString("user_id")
	if userIDStr == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade websocket: %v", err)
		return
	}
	defer conn.Close()

	if h.redisClient == nil {
		log.Println("Redis client is nil, cannot subscribe")
		return
	}

	pubsub := h.redisClient.Subscribe(c.Request.Context(), delivery.PushChannel(userIDStr))
	defer pubsub.Close()

	// Wait for confirmation that subscription is created
	_, err = pubsub.Receive(c.Request.Context())
	if err != nil {
		log.Printf("Failed to subscribe to redis channel: %v", err)
		return
	}

	ch := pubsub.Channel()

	// Signal client disconnect
	clientClosed := make(chan struct{})

	go func() {
		defer close(clientClosed)
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg := <-ch:
			// Payload is already JSON; forward directly.
			err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload))
			if err != nil {
				log.Printf("Failed to write message to websocket: %v", err)
				return
			}
		case <-clientClosed:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
