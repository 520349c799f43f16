package jwt

import (
	authmw "summit/pkg/platform/middleware/auth"
)

// Validator adapts the token service to the auth middleware contract.
type Validator struct {
	service *Service
}

func NewValidator(service *Service) *Validator {
	return &Validator{service: service}
}

func (v *Validator) ValidateToken(tokenString string) (*authmw.Claims, error) {
	claims, err := v.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &authmw.Claims{
		DelegateID: claims.Subject,
		Email:      claims.Email,
	}, nil
}
