package models

// UserRequest is the payload accepted when creating a user.
type UserRequest struct {
	Username  string `json:"username" validate:"notblank,min=2,max=30"`
	Email     string `json:"email" validate:"notblank,email"`
	Password  string `json:"password" validate:"notblank,min=4"`
	FirstName string `json:"firstName" validate:"notblank,min=2,max=30"`
	LastName  string `json:"lastName" validate:"notblank,min=2,max=30"`
}

// UserResponse is returned when fetching a user by id.
type UserResponse struct {
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
	Groups    []string `json:"groups"`
}
