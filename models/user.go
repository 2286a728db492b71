package models

// Default profile values applied client-side. The API is the source of
// truth only for id, name and email; everything else is filled in here
// until the backend learns to store it.
const (
	DefaultPhone        = "14002 54002"
	DefaultBio          = "Love helping my community and my peoples with various tasks!"
	DefaultCredits      = 25
	RegistrationCredits = 10
	DefaultRating       = 4.8
	DefaultServicesUsed = 8
)

// User represents the currently signed-in user's profile as the gateway
// presents it: server identity plus client-side defaults for the fields
// the backend does not supply yet.
type User struct {
	ID              uint    `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	Bio             string  `json:"bio"`
	Credits         int     `json:"credits"`
	Rating          float64 `json:"rating"`
	ServicesOffered int     `json:"services_offered"`
	ServicesUsed    int     `json:"services_used"`
}

// NewCurrentUser returns a profile with the client-side defaults applied
// and no identity set.
func NewCurrentUser() User {
	return User{
		Phone:        DefaultPhone,
		Bio:          DefaultBio,
		Credits:      DefaultCredits,
		Rating:       DefaultRating,
		ServicesUsed: DefaultServicesUsed,
	}
}

// DirectoryUser is a community member as listed by GET /users.
type DirectoryUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
