package models

type RegisterRequest struct {
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	Password string  `json:"password"`
	Image    *string `json:"image"`
}

type RegisterResponse struct {
	User
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
}

type TokenPair struct {
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
}
