package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

// Station is a toll booth with a fixed toll and a registered position.
type Station struct {
	ID         string      `json:"tid"`
	Name       null.String `json:"name"`
	TollAmount float64     `json:"toll_amount"`
	Latitude   float64     `json:"lat"`
	Longitude  float64     `json:"lon"`
	CreatedAt  time.Time   `json:"created_at"`
}

type StationDTO struct {
	ID         string   `json:"tid" binding:"required"`
	Name       string   `json:"name"`
	TollAmount *float64 `json:"toll_amount" binding:"required,gte=0"`
	Latitude   *float64 `json:"lat" binding:"required,gte=-90,lte=90"`
	Longitude  *float64 `json:"lon" binding:"required,gte=-180,lte=180"`
}
