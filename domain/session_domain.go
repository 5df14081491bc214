package domain

import (
	"errors"
)

var (
	MessageSuccessSignUp        = "account created successfully"
	MessageSuccessSignIn        = "signed in successfully"
	MessageSuccessSignOut       = "signed out successfully"
	MessageSuccessResetPassword = "password reset email sent"
	MessageSuccessUpdateProfile = "profile updated successfully"

	MessageFailedSignUp        = "failed to create account"
	MessageFailedSignIn        = "failed to sign in"
	MessageFailedSignOut       = "failed to sign out"
	MessageFailedResetPassword = "failed to send password reset email"
	MessageFailedUpdateProfile = "failed to update profile"

	ErrNoUserLoggedIn   = errors.New("no user logged in")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrSignUpIncomplete = errors.New("sign up did not return a user")
)

type (
	SignUpRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
		FullName string `json:"full_name" validate:"required"`
	}

	SignInRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	ResetPasswordRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	UpdateProfileRequest struct {
		FullName            *string `json:"full_name,omitempty" validate:"omitempty,min=1"`
		AvatarURL           *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
		Location            *string `json:"location,omitempty"`
		NotificationEnabled *bool   `json:"notification_enabled,omitempty"`
	}
)

// Patch renders the non-nil fields as a column patch sent to the gateway
// verbatim.
func (r UpdateProfileRequest) Patch() map[string]any {
	patch := map[string]any{}
	if r.FullName != nil {
		patch["full_name"] = *r.FullName
	}
	if r.AvatarURL != nil {
		patch["avatar_url"] = *r.AvatarURL
	}
	if r.Location != nil {
		patch["location"] = *r.Location
	}
	if r.NotificationEnabled != nil {
		patch["notification_enabled"] = *r.NotificationEnabled
	}
	return patch
}
