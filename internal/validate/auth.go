package validate

// RegisterRequest is the payload for POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Validate checks the register payload.
func (r *RegisterRequest) Validate() error {
	if err := check(r); err != nil {
		return err
	}
	return nil
}

// LoginRequest is the payload for POST /auth/login. The password is only
// checked for presence; format rules apply at registration.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Validate checks the login payload.
func (r *LoginRequest) Validate() error {
	if err := check(r); err != nil {
		return err
	}
	return nil
}
