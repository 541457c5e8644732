package dto

import (
	"encoding/json"
	"time"

	"tradematch_backend/internal/models"
)

type NotificationResponse struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Data      map[string]string `json:"data,omitempty"`
	IsRead    bool              `json:"is_read"`
	ReadAt    *time.Time        `json:"read_at,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

type NotificationListResponse struct {
	Items      []*NotificationResponse `json:"items"`
	Total      int64                   `json:"total"`
	UnreadOnly bool                    `json:"unread_only"`
}

func NewNotificationResponse(n *models.Notification) *NotificationResponse {
	var data map[string]string
	if len(n.Data) > 0 {
		_ = json.Unmarshal(n.Data, &data)
	}
	return &NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Data:      data,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}
