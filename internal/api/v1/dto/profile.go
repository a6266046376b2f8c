package dto

// ProfileSaveDTO creates or updates the business profile of the caller.
type ProfileSaveDTO struct {
	BusinessName string `json:"business_name" validate:"required,max=200"`
	Email        string `json:"email" validate:"required,email"`
}
