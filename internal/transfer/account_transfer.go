package transfer

import "time"

// AccountInfo is the payload behind /api/user/info: the profile plus the two
// things the dashboard gates on, connection state and subscription state.
type AccountInfo struct {
	ID             int64  `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profile_picture"`

	LinkedInConnected bool   `json:"linkedin_connected"`
	LinkedInName      string `json:"linkedin_name,omitempty"`

	SubscriptionStatus string     `json:"subscription_status"`
	SubscriptionEnds   *time.Time `json:"subscription_ends,omitempty"`
}
