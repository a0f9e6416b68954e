package settlement

// SettleRequest represents the request to settle a share. An empty user_id
// settles the caller's own share; the payer names the participant whose
// payment they received.
type SettleRequest struct {
	UserID string `json:"user_id,omitempty"`
}
