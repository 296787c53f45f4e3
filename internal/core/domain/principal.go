package domain

import (
	"net/mail"
	"strings"
)

// Role is the marketplace role of a principal.
type Role string

const (
	RoleBuyer    Role = "buyer"
	RoleSupplier Role = "supplier"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleBuyer || r == RoleSupplier
}

// Address is the registered postal address of a principal.
type Address struct {
	CEP           string `json:"cep" yaml:"cep"`
	StateInitials string `json:"state_initial" yaml:"state_initial"`
	State         string `json:"state" yaml:"state"`
	City          string `json:"city" yaml:"city"`
	Neighborhood  string `json:"neighborhood" yaml:"neighborhood"`
	Street        string `json:"street" yaml:"street"`
	Number        string `json:"number" yaml:"number"`
	Complement    string `json:"complement,omitempty" yaml:"complement,omitempty"`
}

// Agent is the energy-market agent a principal trades for.
type Agent struct {
	CNPJ        string `json:"cnpj" yaml:"cnpj"`
	CCEECode    string `json:"ccee_code" yaml:"ccee_code"`
	Submarket   string `json:"submarket_name" yaml:"submarket_name"`
	CompanyName string `json:"company_name" yaml:"company_name"`
}

// Principal is the authenticated user's profile.
type Principal struct {
	Name    string  `json:"name" yaml:"name"`
	Email   string  `json:"email" yaml:"email"`
	Role    Role    `json:"user_type" yaml:"user_type"`
	Address Address `json:"address" yaml:"address"`
	Agent   Agent   `json:"agent" yaml:"agent"`
}

// Clone returns a copy of p. Principal holds only value fields, so a
// shallow copy is enough to isolate callers from the cached instance.
func (p *Principal) Clone() *Principal {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// PrincipalPatch carries a partial update of a cached Principal.
// Nil fields are left untouched.
type PrincipalPatch struct {
	Name    *string
	Email   *string
	Role    *Role
	Address *Address
	Agent   *Agent
}

// Apply merges the non-nil fields of patch into p.
func (p *Principal) Apply(patch PrincipalPatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Email != nil {
		p.Email = *patch.Email
	}
	if patch.Role != nil {
		p.Role = *patch.Role
	}
	if patch.Address != nil {
		p.Address = *patch.Address
	}
	if patch.Agent != nil {
		p.Agent = *patch.Agent
	}
}

// Validate checks a patch before it reaches the cached principal.
func (patch PrincipalPatch) Validate() error {
	if patch.Role != nil && !patch.Role.Valid() {
		return ErrInvalidArgument.WithDetails("role must be buyer or supplier")
	}
	if patch.Email != nil {
		if _, err := mail.ParseAddress(*patch.Email); err != nil {
			return ErrInvalidArgument.WithDetails("email is not a valid address")
		}
	}
	return nil
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate performs local shape checks only; the server decides validity.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return ErrMissingArgument.WithDetails("email")
	}
	if c.Password == "" {
		return ErrMissingArgument.WithDetails("password")
	}
	return nil
}

// RegistrationAddress is the address block of a signup payload.
type RegistrationAddress struct {
	CEP           string `json:"cep"`
	StateInitials string `json:"state_initials"`
	State         string `json:"state"`
	City          string `json:"city"`
	Neighborhood  string `json:"neighborhood"`
	Street        string `json:"street"`
	Number        string `json:"number"`
	Complement    string `json:"complement,omitempty"`
}

// RegistrationAgent is the agent block of a signup payload.
type RegistrationAgent struct {
	CNPJ        string  `json:"cnpj"`
	CCEECode    string  `json:"ccee_code"`
	Submarket   *string `json:"submarket_name"`
	CompanyName string  `json:"company_name"`
}

// Registration is the signup payload.
type Registration struct {
	Name            string              `json:"name"`
	Email           string              `json:"email"`
	Password        string              `json:"password"`
	ConfirmPassword string              `json:"confirm_password"`
	Role            Role                `json:"user_type"`
	Address         RegistrationAddress `json:"address"`
	Agent           RegistrationAgent   `json:"agent"`
}

// Validate performs local shape checks on the signup payload.
func (r Registration) Validate() error {
	switch {
	case strings.TrimSpace(r.Name) == "":
		return ErrMissingArgument.WithDetails("name")
	case strings.TrimSpace(r.Email) == "":
		return ErrMissingArgument.WithDetails("email")
	case r.Password == "":
		return ErrMissingArgument.WithDetails("password")
	case r.Password != r.ConfirmPassword:
		return ErrInvalidArgument.WithDetails("password confirmation does not match")
	case !r.Role.Valid():
		return ErrInvalidArgument.WithDetails("user type must be buyer or supplier")
	}
	return nil
}

// AuthResult is what the login and signup endpoints return on success.
type AuthResult struct {
	Token     string    `json:"token"`
	Principal Principal `json:"user"`
}
