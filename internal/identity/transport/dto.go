package transport

import "time"

type CreateUserRequest struct {
	Role        string `json:"role" validate:"required,oneof=client bos"`
	FullName    string `json:"fullName" validate:"required,min=2,max=120"`
	PhoneNumber string `json:"phoneNumber" validate:"required,max=30"`
	Email       string `json:"email" validate:"omitempty,email,max=254"`
}

type UpdateUserRequest struct {
	FullName    *string `json:"fullName" validate:"omitempty,min=2,max=120"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,max=30"`
	Email       *string `json:"email" validate:"omitempty,email,max=254"`
}

type UserResponse struct {
	ID          string    `json:"id"`
	Role        string    `json:"role"`
	FullName    string    `json:"fullName"`
	PhoneNumber string    `json:"phoneNumber"`
	Email       string    `json:"email,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
