package transport

import "time"

type CreateReviewRequest struct {
	JobRequestID string `json:"jobRequestId" validate:"required"`
	BosID        string `json:"bosId" validate:"required"`
	Rating       int    `json:"rating" validate:"required,min=1,max=5"`
	Comment      string `json:"comment" validate:"max=1000"`
}

type ReviewResponse struct {
	ID           string    `json:"id"`
	JobRequestID string    `json:"jobRequestId"`
	BosID        string    `json:"bosId"`
	ClientID     string    `json:"clientId"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"createdAt"`
}

type CreateReviewResponse struct {
	Review        ReviewResponse `json:"review"`
	RatingAverage float64        `json:"ratingAverage"`
	RatingCount   int            `json:"ratingCount"`
}

type ReviewListResponse struct {
	Items []ReviewResponse `json:"items"`
	Total int              `json:"total"`
}
