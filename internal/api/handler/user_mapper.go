package handler

import (
	"github.com/ticketing/user-service/internal/core/ports"
)

// --- Request → Service input ---

func createToPayload(req createUserRequest) ports.UserPayload {
	return ports.UserPayload{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		UserName:  req.UserName,
		Password:  req.Password,
		Enabled:   req.Enabled,
		Phone:     req.Phone,
		Gender:    req.Gender,
		Role:      toRolePayload(req.Role),
	}
}

func updateToPayload(req updateUserRequest) ports.UserPayload {
	return ports.UserPayload{
		ID:        req.ID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		UserName:  req.UserName,
		Password:  req.Password,
		Enabled:   req.Enabled,
		Phone:     req.Phone,
		Gender:    req.Gender,
		Role:      toRolePayload(req.Role),
	}
}

func toRolePayload(r roleRequest) ports.RolePayload {
	return ports.RolePayload{ID: r.ID, Description: r.Description}
}

// --- Service result → HTTP response ---

func toUserResponse(p ports.UserPayload) userResponse {
	return userResponse{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		UserName:  p.UserName,
		Enabled:   p.Enabled,
		Phone:     p.Phone,
		Gender:    p.Gender,
		Role: roleResponse{
			ID:          p.Role.ID,
			Description: p.Role.Description,
		},
	}
}

func toListResponse(users []ports.UserPayload) listUsersResponse {
	items := make([]userResponse, 0, len(users))
	for _, u := range users {
		items = append(items, toUserResponse(u))
	}
	return listUsersResponse{Items: items, Total: len(items)}
}
