package dto

import "github.com/taskhive/taskhive-server/internal/model"

type RegisterRequest struct {
	Name         string       `json:"name" binding:"required,min=2,max=100"`
	Email        string       `json:"email" binding:"required,email"`
	Password     string       `json:"password" binding:"required,min=8,max=72"`
	Phone        *string      `json:"phone" binding:"omitempty,max=16"`
	Gender       model.Gender `json:"gender" binding:"required,oneof=male female geek"`
	ReferralCode *string      `json:"referral_code" binding:"omitempty,len=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type UpdateProfileRequest struct {
	Name   *string       `json:"name" binding:"omitempty,min=2,max=100"`
	Phone  *string       `json:"phone" binding:"omitempty,max=16"`
	Gender *model.Gender `json:"gender" binding:"omitempty,oneof=male female geek"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}
