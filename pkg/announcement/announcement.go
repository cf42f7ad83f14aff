package announcement

import (
	"errors"
	"time"
)

var ErrAnnouncementNotFound = errors.New("announcement not found")

// Announcement is a notice published on the placement cell's board.
type Announcement struct {
	ID        string
	Title     string
	Body      string
	PostedBy  string
	CreatedAt time.Time
}
