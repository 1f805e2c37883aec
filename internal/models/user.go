package models

import "time"

// User represents an application user identified through Google sign-in.
// The stored Google tokens back the Drive/Docs export; they are never sent to
// the frontend.
type User struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	Email        string    `bson:"email" json:"email"`
	Name         string    `bson:"name" json:"name"`
	GoogleID     string    `bson:"googleId,omitempty" json:"-"`
	AccessToken  string    `bson:"accessToken,omitempty" json:"-"`
	RefreshToken string    `bson:"refreshToken,omitempty" json:"-"`
	TokenExpiry  time.Time `bson:"tokenExpiry,omitempty" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}
