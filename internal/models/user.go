package models

import "time"

// Profile is the set of skin attributes attached to a user.
//
// Sets are kept normalized (trimmed, lower-cased, unique, sorted) and are
// never nil once they pass through Normalize or a repository; an empty set
// is a real answer ("no allergies"), not a missing one.
type Profile struct {
	Gender       Gender            `json:"gender,omitempty"`
	Age          int               `json:"age,omitempty"`
	SkinType     SkinType          `json:"skinType,omitempty"`
	SkinConcerns []Concern         `json:"skinConcerns"`
	Allergies    []string          `json:"allergies"`
	Preferences  []Preference      `json:"preferences"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// User is one row of the users table.
type User struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	PasswordHash     string `json:"-"`
	ProfileCompleted bool   `json:"profileCompleted"`
	Profile
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProfileView is what a profile read returns.
type ProfileView struct {
	UserID           string `json:"userId"`
	ProfileCompleted bool   `json:"profileCompleted"`
	Profile
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) View() *ProfileView {
	return &ProfileView{
		UserID:           u.ID,
		ProfileCompleted: u.ProfileCompleted,
		Profile:          u.Profile,
		UpdatedAt:        u.UpdatedAt,
	}
}

// RefreshToken is a server-stored opaque refresh token.
type RefreshToken struct {
	UserID    string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
