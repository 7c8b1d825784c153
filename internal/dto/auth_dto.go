package dto

type RegisterRequest struct {
	Username string `json:"username" form:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
}

// AuthResponse carries the issued token. Message and User are only set on
// registration.
type AuthResponse struct {
	Auth    bool          `json:"auth"`
	Token   string        `json:"token"`
	Message string        `json:"message,omitempty"`
	User    *UserResponse `json:"user,omitempty"`
}
