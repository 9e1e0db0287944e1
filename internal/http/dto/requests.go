package dto

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

type BlueprintRequest struct {
	CampaignName  string   `json:"campaign_name"`
	ContentIdea   string   `json:"content_idea"`
	ReferenceFile string   `json:"reference_file,omitempty"` // display name only
	Platforms     []string `json:"platforms"`
	Format        string   `json:"format"`
}

type ApproveRequest struct {
	DraftID string `json:"draft_id"`
}

type RejectRequest struct {
	DraftID string `json:"draft_id"`
}
