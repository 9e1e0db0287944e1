package models

import "time"

const ApprovalStatus = "approved"

// ApprovalRecord is the payload reported to the automation endpoint when a
// draft is approved. Absent draft or session fields are sent as empty
// strings, never omitted. Built fresh per attempt, never stored.
type ApprovalRecord struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DraftID     string `json:"draft_id"`
	Status      string `json:"status"`
	ContentText string `json:"content_text"`
	ImageURL    string `json:"image_url"`
	Platform    string `json:"platform"`
	ApprovedAt  string `json:"approved_at"`
}

// NewApprovalRecord builds the record from the current session and draft.
// The session may be nil in theory; the route guard makes that unreachable
// in practice, but the payload degrades to empty fields rather than panics.
func NewApprovalRecord(sess *Session, draft *Draft) ApprovalRecord {
	rec := ApprovalRecord{
		DraftID:     draft.ID.String(),
		Status:      ApprovalStatus,
		ContentText: draft.ContentText,
		ImageURL:    draft.ImageURL,
		Platform:    draft.PlatformList(),
		ApprovedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if sess != nil {
		rec.UserID = sess.UserID.String()
		rec.Email = sess.Email
	}
	return rec
}
