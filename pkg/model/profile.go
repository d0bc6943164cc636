package model

// Person is a document of the people collection
type Person struct {
	ID               string `firestore:"-"`
	UID              string `firestore:"uid"`
	Name             string `firestore:"name,omitempty"`
	InteractionCount int64  `firestore:"interactionCount,omitempty"`
}

// UserProfile is a document of the users collection
type UserProfile struct {
	UID                string `firestore:"uid"`
	DisplayName        string `firestore:"displayName,omitempty"`
	CreatedAt          any    `firestore:"createdAt,omitempty"`
	IsProUser          bool   `firestore:"isProUser,omitempty"`
	OnboardingComplete bool   `firestore:"onboardingComplete,omitempty"`
}
