package social

import "time"

// Event represents a campus event listing
type Event struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	Location       string    `json:"location,omitempty"`
	EventDate      time.Time `json:"eventDate"`
	CampusID       int64     `json:"campusId"`
	CreatorID      UserID    `json:"creatorId"`
	ParticipantIDs []UserID  `json:"participantIds,omitempty"`
}

// ParticipantCount returns the number of confirmed participants.
func (e *Event) ParticipantCount() int {
	return len(e.ParticipantIDs)
}

// SetParticipant adds or removes id from the participant set. Adding an
// already present user or removing an absent one is a no-op.
func (e *Event) SetParticipant(id UserID, joined bool) {
	if joined {
		if !e.HasParticipant(id) {
			e.ParticipantIDs = append(e.ParticipantIDs, id)
		}
		return
	}
	for i, uid := range e.ParticipantIDs {
		if uid == id {
			e.ParticipantIDs = append(e.ParticipantIDs[:i], e.ParticipantIDs[i+1:]...)
			return
		}
	}
}

// HasParticipant reports whether the given user already joined the event.
func (e *Event) HasParticipant(id UserID) bool {
	for _, uid := range e.ParticipantIDs {
		if uid == id {
			return true
		}
	}
	return false
}
