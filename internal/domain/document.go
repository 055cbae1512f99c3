package domain

import "time"

// Document describes one stored borrower document. The object key is
// {userID}/{timestamp}__{sanitizedName}; the display name is recovered
// from the key on listing.
type Document struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

type SignedURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Referral program DTOs (dashboard invite view).

type ReferralResponse struct {
	ReferralCode string `json:"referral_code"`
	ReferralLink string `json:"referral_link"`
}

type SendInviteRequest struct {
	Email string `json:"email" validate:"required,email"`
}
