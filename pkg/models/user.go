package models

import (
	"time"
)

// Account represents a registered user. Its channel is the account itself.
type Account struct {
	ID            string    `json:"id" db:"id"`
	Username      string    `json:"username" db:"username"`
	Email         string    `json:"email" db:"email"`
	FullName      string    `json:"fullname" db:"fullname"`
	AvatarURL     string    `json:"avatar" db:"avatar_url"`
	CoverImageURL string    `json:"cover_image" db:"cover_image_url"`
	PasswordHash  string    `json:"-" db:"password_hash"`
	RefreshToken  string    `json:"-" db:"refresh_token"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Public returns the subset of fields exposed when an account is embedded in another resource
func (a *Account) Public() PublicAccount {
	return PublicAccount{
		ID:        a.ID,
		Username:  a.Username,
		FullName:  a.FullName,
		AvatarURL: a.AvatarURL,
	}
}

// PublicAccount is the projection of an account shown next to its content
type PublicAccount struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"fullname"`
	AvatarURL string `json:"avatar"`
}

// ChannelProfile is an account together with its subscription statistics
type ChannelProfile struct {
	ID                        string    `json:"id"`
	Username                  string    `json:"username"`
	Email                     string    `json:"email"`
	FullName                  string    `json:"fullname"`
	AvatarURL                 string    `json:"avatar"`
	CoverImageURL             string    `json:"cover_image"`
	SubscribersCount          int64     `json:"subscribers_count"`
	ChannelsSubscribedToCount int64     `json:"channels_subscribed_to_count"`
	IsSubscribed              bool      `json:"is_subscribed"`
	CreatedAt                 time.Time `json:"created_at"`
}

// Subscription links a subscriber account to a channel account
type Subscription struct {
	ID           string    `json:"id" db:"id"`
	SubscriberID string    `json:"subscriber_id" db:"subscriber_id"`
	ChannelID    string    `json:"channel_id" db:"channel_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// TokenPair is returned on login and token refresh
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
