package domain

// CartItem is one line of a cart. Book is a copy of the catalog row taken
// when the line was added; repeated adds of the same book stay separate lines.
type CartItem struct {
	BookID   int64 `json:"bookId"`
	Quantity int   `json:"quantity"`
	Book     Book  `json:"bookDetails"`
}

type Cart struct {
	UserID int64      `json:"userId"`
	Items  []CartItem `json:"items"`
}
