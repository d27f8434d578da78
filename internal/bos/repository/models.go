package repository

import "time"

// Profile is the public face of a professional. Its id is the owner's user id.
type Profile struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
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
	LeadCredits       int       `json:"leadCredits"`
	IsVerified        bool      `json:"isVerified"`
	PhotoKey          string    `json:"photoKey,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// ProfileUpdate holds the fields an owner may edit. Nil leaves a field as is.
// Credits, ratings and verification are not editable here.
type ProfileUpdate struct {
	DisplayName       *string
	Categories        []string
	Description       *string
	Commune           *string
	City              *string
	PriceRangeMin     *int
	PriceRangeMax     *int
	YearsOfExperience *int
	WhatsappNumber    *string
	PhotoKey          *string
}

func (u ProfileUpdate) fields() map[string]any {
	fields := make(map[string]any)
	set := func(name string, v any, ok bool) {
		if ok {
			fields[name] = v
		}
	}
	set("displayName", deref(u.DisplayName), u.DisplayName != nil)
	set("categories", u.Categories, u.Categories != nil)
	set("description", deref(u.Description), u.Description != nil)
	set("commune", deref(u.Commune), u.Commune != nil)
	set("city", deref(u.City), u.City != nil)
	set("priceRangeMin", derefInt(u.PriceRangeMin), u.PriceRangeMin != nil)
	set("priceRangeMax", derefInt(u.PriceRangeMax), u.PriceRangeMax != nil)
	set("yearsOfExperience", derefInt(u.YearsOfExperience), u.YearsOfExperience != nil)
	set("whatsappNumber", deref(u.WhatsappNumber), u.WhatsappNumber != nil)
	set("photoKey", deref(u.PhotoKey), u.PhotoKey != nil)
	return fields
}

// SearchFilter narrows SearchProfiles. Zero values are ignored.
type SearchFilter struct {
	Category  string
	Commune   string
	MinRating float64
	Limit     int
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}
