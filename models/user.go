package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"` // bcrypt hash
	AvatarURL string             `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Profile is the user-facing view of a User.
type Profile struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatarUrl"`
}

const (
	NoName  = "No name"
	NoEmail = "No email"
)

// Profile returns the profile view, substituting placeholders for a missing name or email.
func (u *User) Profile() Profile {
	p := Profile{Name: u.Name, Email: u.Email}
	if p.Name == "" {
		p.Name = NoName
	}
	if p.Email == "" {
		p.Email = NoEmail
	}
	if u.AvatarURL != "" {
		avatar := u.AvatarURL
		p.AvatarURL = &avatar
	}
	return p
}
