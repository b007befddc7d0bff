package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pagebound/bookchat/internal/dto"
	"github.com/pagebound/bookchat/internal/model"
	"github.com/pagebound/bookchat/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMessageService struct {
	postErr   error
	posted    *model.Message
	listed    []model.Message
	listLimit int
}

func (s *stubMessageService) Post(ctx context.Context, roomID, userID uuid.UUID, body string, parentID *uuid.UUID) (*model.Message, error) {
	if s.postErr != nil {
		return nil, s.postErr
	}
	return s.posted, nil
}

func (s *stubMessageService) Edit(ctx context.Context, messageID, userID uuid.UUID, newBody string) (*model.Message, error) {
	return nil, nil
}

func (s *stubMessageService) SoftDelete(ctx context.Context, messageID, userID uuid.UUID, moderator bool) error {
	return nil
}

func (s *stubMessageService) ListMessages(ctx context.Context, roomID uuid.UUID, beforeMessageID *uuid.UUID, limit int) ([]model.Message, error) {
	s.listLimit = limit
	if len(s.listed) > limit {
		return s.listed[:limit], nil
	}
	return s.listed, nil
}

func newMessageRouter(svc service.MessageService, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewMessageHandler(svc)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", userID.String())
		c.Next()
	})
	router.POST("/api/rooms/:room_id/messages", h.Post)
	router.GET("/api/rooms/:room_id/messages", h.List)
	return router
}

func TestPostRateLimitedResponseCarriesRetryAfter(t *testing.T) {
	svc := &stubMessageService{postErr: &service.RateLimitError{
		Message:    "you are posting too fast. Please wait 7 seconds",
		RetryAfter: 7 * time.Second,
	}}
	router := newMessageRouter(svc, uuid.New())

	req := httptest.NewRequest(http.MethodPost, "/api/rooms/"+uuid.NewString()+"/messages",
		strings.NewReader(`{"body":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "7", rec.Header().Get("Retry-After"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "posting too fast")
}

func TestListClampsOversizedLimitBeforePaging(t *testing.T) {
	roomID := uuid.New()
	svc := &stubMessageService{}
	for i := 0; i < 50; i++ {
		svc.listed = append(svc.listed, model.Message{
			ID:        uuid.New(),
			RoomID:    roomID,
			UserID:    uuid.New(),
			Body:      "page filler",
			CreatedAt: time.Now(),
		})
	}
	router := newMessageRouter(svc, uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/api/rooms/"+roomID.String()+"/messages?limit=200", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50, svc.listLimit)

	var body dto.MessageListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 50)
	// A full page at the effective limit must advertise another page.
	assert.True(t, body.Meta.HasMore)
	assert.Equal(t, body.Data[49].ID.String(), body.Meta.NextCursor)
}

func TestListShortPageHasNoCursor(t *testing.T) {
	roomID := uuid.New()
	svc := &stubMessageService{listed: []model.Message{{
		ID:        uuid.New(),
		RoomID:    roomID,
		UserID:    uuid.New(),
		Body:      "only one",
		CreatedAt: time.Now(),
	}}}
	router := newMessageRouter(svc, uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/api/rooms/"+roomID.String()+"/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body dto.MessageListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Meta.HasMore)
	assert.Empty(t, body.Meta.NextCursor)
}
