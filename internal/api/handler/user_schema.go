package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type roleRequest struct {
	ID          int64  `json:"id"`
	Description string `json:"description" validate:"required"`
}

type createUserRequest struct {
	FirstName string      `json:"first_name" validate:"required"`
	LastName  string      `json:"last_name"  validate:"required"`
	UserName  string      `json:"user_name"  validate:"required"`
	Password  string      `json:"password"   validate:"required,min=4"`
	Enabled   bool        `json:"enabled"`
	Phone     string      `json:"phone"`
	Gender    string      `json:"gender"     validate:"omitempty,oneof=MALE FEMALE"`
	Role      roleRequest `json:"role"       validate:"required"`
}

// updateUserRequest leaves password optional: empty keeps the stored one.
// ID is accepted but never used to select the target record.
type updateUserRequest struct {
	ID        int64       `json:"id"`
	FirstName string      `json:"first_name" validate:"required"`
	LastName  string      `json:"last_name"  validate:"required"`
	UserName  string      `json:"user_name"  validate:"required"`
	Password  string      `json:"password"   validate:"omitempty,min=4"`
	Enabled   bool        `json:"enabled"`
	Phone     string      `json:"phone"`
	Gender    string      `json:"gender"     validate:"omitempty,oneof=MALE FEMALE"`
	Role      roleRequest `json:"role"       validate:"required"`
}

type roleResponse struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
}

type userResponse struct {
	ID        int64        `json:"id"`
	FirstName string       `json:"first_name"`
	LastName  string       `json:"last_name"`
	UserName  string       `json:"user_name"`
	Enabled   bool         `json:"enabled"`
	Phone     string       `json:"phone,omitempty"`
	Gender    string       `json:"gender,omitempty"`
	Role      roleResponse `json:"role"`
}

type listUsersResponse struct {
	Items []userResponse `json:"items"`
	Total int            `json:"total"`
}

type messageResponse struct {
	Message string `json:"message"`
}
