package auth

// Role distinguishes buyers from sellers.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// User is the authenticated profile returned by the auth service.
type User struct {
	ID          string `json:"_id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
	AccessToken string `json:"access_token,omitempty"`
}

// SignupInput is the registration form payload.
type SignupInput struct {
	Username string `json:"username" validate:"required,min=3,max=40"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     Role   `json:"role" validate:"omitempty,oneof=buyer seller"`
}

// LoginInput is the sign-in form payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the auth service's login envelope; the access token
// rides inside the user object.
type LoginResponse struct {
	User User `json:"user"`
}
