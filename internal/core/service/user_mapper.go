package service

import (
	"github.com/ticketing/user-service/internal/core/domain"
	"github.com/ticketing/user-service/internal/core/ports"
)

// toPayload never exposes the stored password hash.
func toPayload(u *domain.User) ports.UserPayload {
	return ports.UserPayload{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		UserName:  u.UserName,
		Enabled:   u.Enabled,
		Phone:     u.Phone,
		Gender:    string(u.Gender),
		Role: ports.RolePayload{
			ID:          u.Role.ID,
			Description: u.Role.Description,
		},
	}
}

func toPayloads(users []*domain.User) []ports.UserPayload {
	out := make([]ports.UserPayload, 0, len(users))
	for _, u := range users {
		out = append(out, toPayload(u))
	}
	return out
}

func toUser(p ports.UserPayload) *domain.User {
	return &domain.User{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		UserName:  p.UserName,
		PassWord:  p.Password,
		Enabled:   p.Enabled,
		Phone:     p.Phone,
		Gender:    domain.Gender(p.Gender),
		Role: domain.Role{
			ID:          p.Role.ID,
			Description: p.Role.Description,
		},
	}
}
