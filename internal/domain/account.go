package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

// Account is the vehicle owner, keyed by email.
type Account struct {
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Phone     null.String `json:"phone"`
	Address   null.String `json:"address"`
	CreatedAt time.Time   `json:"created_at"`
}

type Balance struct {
	Email     string    `json:"email"`
	Amount    float64   `json:"amount"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateAccountDTO struct {
	Email   string `json:"email" binding:"required,email"`
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// RegisteredPlate is one entry of an owner's plate set as shown by /my_cars.
type RegisteredPlate struct {
	State       string `json:"state"`
	PlateNumber string `json:"plate_number"`
	ImageURL    string `json:"image_url"`
}
