package dto

// CreateOrderRequest is the body of POST /orders.
type CreateOrderRequest struct {
	ProductID    string `json:"productId"`
	Quantity     int    `json:"quantity"`
	CustomerName string `json:"customerName"`
}
