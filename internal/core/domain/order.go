package domain

import "time"

// OrderSummary is a checked-out cart joined with the user who placed it.
// Books is the snapshot taken at checkout and is never modified afterwards.
type OrderSummary struct {
	OrderID   int64      `json:"orderId"`
	OrderDate time.Time  `json:"orderDate"`
	User      OrderUser  `json:"user"`
	Books     []CartItem `json:"books"`
}

type OrderUser struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
