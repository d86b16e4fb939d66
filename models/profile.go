package models

// Profile holds the public identity of a user. Auth credentials live in the
// Accounts table, keyed by email.
type Profile struct {
	UserID        string `dynamodbav:"userId" json:"userId"`
	FirstName     string `dynamodbav:"firstName" json:"firstName"`
	LastName      string `dynamodbav:"lastName" json:"lastName"`
	Language      string `dynamodbav:"language" json:"language"`
	Email         string `dynamodbav:"email" json:"email"`
	EmailVerified bool   `dynamodbav:"emailVerified" json:"emailVerified"`
	AvatarKey     string `dynamodbav:"avatarKey,omitempty" json:"avatarKey,omitempty"`
	CreatedAt     string `dynamodbav:"createdAt" json:"createdAt"`
}

// ProfileSummary is the slice of a profile other users are shown.
type ProfileSummary struct {
	UserID    string `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Language  string `json:"language"`
}

func (p Profile) Summary() ProfileSummary {
	return ProfileSummary{
		UserID:    p.UserID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Language:  p.Language,
	}
}

// Account is the credential record behind a profile.
type Account struct {
	Email        string `dynamodbav:"email" json:"email"`
	UserID       string `dynamodbav:"userId" json:"userId"`
	PasswordHash string `dynamodbav:"passwordHash" json:"-"`
	CreatedAt    string `dynamodbav:"createdAt" json:"createdAt"`
}

const ProfilesTable = "Profiles"

const AccountsTable = "Accounts"
