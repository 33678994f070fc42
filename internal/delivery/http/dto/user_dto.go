package dto

import "botdash/internal/domain"

// UserOutput represents the session user in API responses
type UserOutput struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	Plan          string `json:"plan"`
	IsAdmin       bool   `json:"is_admin"`
	IsPremiumUser bool   `json:"is_premium_user"`
}

// NewUserOutput converts a domain user
func NewUserOutput(u *domain.User) *UserOutput {
	return &UserOutput{
		ID:            u.ID.String(),
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		Plan:          u.Plan,
		IsAdmin:       u.IsAdmin(),
		IsPremiumUser: u.IsPremiumUser(),
	}
}

// NewUserOutputs converts a list of domain users
func NewUserOutputs(users []*domain.User) []*UserOutput {
	out := make([]*UserOutput, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserOutput(u))
	}
	return out
}
