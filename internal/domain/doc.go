// Package domain defines the core business entities of the car rental
// service (users, cars, rentals, and payments) together with their
// validation rules and lifecycle state machines.
package domain
