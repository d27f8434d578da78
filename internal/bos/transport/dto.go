package transport

import "time"

type CreateProfileRequest struct {
	DisplayName       string   `json:"displayName" validate:"omitempty,min=2,max=120"`
	Categories        []string `json:"categories" validate:"required,min=1,max=10,dive,category"`
	Description       string   `json:"description" validate:"max=2000"`
	Commune           string   `json:"commune" validate:"required,commune"`
	PriceRangeMin     int      `json:"priceRangeMin" validate:"min=0"`
	PriceRangeMax     int      `json:"priceRangeMax" validate:"min=0"`
	YearsOfExperience int      `json:"yearsOfExperience" validate:"min=0,max=80"`
	WhatsappNumber    string   `json:"whatsappNumber" validate:"omitempty,max=30"`
}

type UpdateProfileRequest struct {
	DisplayName       *string  `json:"displayName" validate:"omitempty,min=2,max=120"`
	Categories        []string `json:"categories" validate:"omitempty,min=1,max=10,dive,category"`
	Description       *string  `json:"description" validate:"omitempty,max=2000"`
	Commune           *string  `json:"commune" validate:"omitempty,commune"`
	PriceRangeMin     *int     `json:"priceRangeMin" validate:"omitempty,min=0"`
	PriceRangeMax     *int     `json:"priceRangeMax" validate:"omitempty,min=0"`
	YearsOfExperience *int     `json:"yearsOfExperience" validate:"omitempty,min=0,max=80"`
	WhatsappNumber    *string  `json:"whatsappNumber" validate:"omitempty,max=30"`
}

type SearchProfilesRequest struct {
	Category  string  `form:"category" validate:"omitempty,category"`
	Commune   string  `form:"commune" validate:"omitempty,commune"`
	MinRating float64 `form:"minRating" validate:"omitempty,min=0,max=5"`
}

// ProfileResponse is a professional profile. LeadCredits is only present for the owner.
type ProfileResponse struct {
	ID                string    `json:"id"`
	DisplayName       string    `json:"displayName"`
	Categories        []string  `json:"categories"`
	Description       string    `json:"description"`
	Commune           string    `json:"commune"`
	City              string    `json:"city"`
	RatingAverage     float64   `json:"ratingAverage"`
	RatingCount       int       `json:"ratingCount"`
	PriceRangeMin     int       `json:"priceRangeMin"`
	PriceRangeMax     int       `json:"priceRangeMax"`
	YearsOfExperience int       `json:"yearsOfExperience"`
	WhatsappNumber    string    `json:"whatsappNumber,omitempty"`
	IsVerified        bool      `json:"isVerified"`
	PhotoURL          string    `json:"photoUrl,omitempty"`
	LeadCredits       *int      `json:"leadCredits,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type ProfileListResponse struct {
	Items []ProfileResponse `json:"items"`
	Total int               `json:"total"`
}
