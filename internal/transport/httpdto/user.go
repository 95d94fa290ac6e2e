package httpdto

import (
	"time"

	"pairchat/internal/domain"
	"pairchat/internal/services"
)

// SetStatusRequest is the body for POST /api/users/status.
type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UserDTO represents a user in API responses.
type UserDTO struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Status      string `json:"status"`
	LastSeenAt  string `json:"last_seen_at,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// SidebarEntryDTO is one row of GET /api/users: a peer plus conversation
// context for the sidebar.
type SidebarEntryDTO struct {
	UserDTO
	LastMessage *MessageDTO `json:"last_message,omitempty"`
	UnreadCount int64       `json:"unread_count"`
}

// FromUser converts a domain user to UserDTO.
func FromUser(u domain.User) UserDTO {
	dto := UserDTO{
		ID:          u.ID.String(),
		Email:       u.Email,
		DisplayName: u.DisplayName(),
		Status:      u.Status,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339Nano),
	}
	if u.Username.Valid {
		dto.Username = u.Username.String
	}
	if u.FirstName.Valid {
		dto.FirstName = u.FirstName.String
	}
	if u.LastName.Valid {
		dto.LastName = u.LastName.String
	}
	if u.AvatarURL.Valid {
		dto.AvatarURL = u.AvatarURL.String
	}
	if u.LastSeenAt.Valid {
		dto.LastSeenAt = u.LastSeenAt.Time.Format(time.RFC3339Nano)
	}
	return dto
}

// FromSidebarEntry converts a service sidebar entry to its DTO.
func FromSidebarEntry(e services.SidebarEntry) SidebarEntryDTO {
	dto := SidebarEntryDTO{
		UserDTO:     FromUser(e.User),
		UnreadCount: e.UnreadCount,
	}
	if e.LastMessage != nil {
		last := FromMessage(*e.LastMessage)
		dto.LastMessage = &last
	}
	return dto
}

// FromSidebarEntrySlice converts a slice of sidebar entries.
func FromSidebarEntrySlice(entries []services.SidebarEntry) []SidebarEntryDTO {
	dtos := make([]SidebarEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = FromSidebarEntry(e)
	}
	return dtos
}
