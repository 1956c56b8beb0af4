package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Car validation errors
var (
	// ErrCarIDEmpty is returned when a car ID is empty or nil.
	ErrCarIDEmpty = errors.New("car ID cannot be empty")

	// ErrCarBrandEmpty is returned when a car's brand is empty.
	ErrCarBrandEmpty = errors.New("car brand cannot be empty")

	// ErrCarModelEmpty is returned when a car's model is empty.
	ErrCarModelEmpty = errors.New("car model cannot be empty")

	// ErrCarYearInvalid is returned when a car's year is outside the accepted range.
	ErrCarYearInvalid = errors.New("car year must be between 1900 and 2100")

	// ErrCarPriceInvalid is returned when a car's daily price is not positive.
	ErrCarPriceInvalid = errors.New("car price per day must be positive")
)

// Car represents a rentable vehicle in the fleet.
type Car struct {
	ID          uuid.UUID `json:"id"`
	Brand       string    `json:"brand"`
	Model       string    `json:"model"`
	Year        int       `json:"year"`
	PricePerDay float64   `json:"price_per_day"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCar creates a new Car with the given attributes.
// It generates a new UUID for the car ID and sets the creation/update
// timestamps. Returns an error if validation fails.
func NewCar(brand, model string, year int, pricePerDay float64) (*Car, error) {
	car := &Car{
		ID:          uuid.New(),
		Brand:       brand,
		Model:       model,
		Year:        year,
		PricePerDay: pricePerDay,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := car.Validate(); err != nil {
		return nil, err
	}

	return car, nil
}

// Validate checks if the Car has valid data.
// Returns an error if any field fails validation.
func (c *Car) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCarIDEmpty
	}

	if strings.TrimSpace(c.Brand) == "" {
		return ErrCarBrandEmpty
	}

	if strings.TrimSpace(c.Model) == "" {
		return ErrCarModelEmpty
	}

	if c.Year < 1900 || c.Year > 2100 {
		return ErrCarYearInvalid
	}

	if c.PricePerDay <= 0 {
		return ErrCarPriceInvalid
	}

	return nil
}
