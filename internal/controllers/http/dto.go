package http

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type NavigateRequest struct {
	View string `json:"view" binding:"required"`
}

type AddToCartRequest struct {
	ItemID   string `json:"itemId" binding:"required"`
	Quantity int    `json:"quantity" binding:"min=0"`
}

// UpdateQuantityRequest takes a pointer so an explicit zero, which removes
// the entry, is told apart from a missing field.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type SubmitCheckoutRequest struct {
	PaymentProof string `json:"paymentProof"`
	PickupTime   string `json:"pickupTime"`
}

type OpenChatRequest struct {
	SellerID string `json:"sellerId" binding:"required"`
}

type SendMessageRequest struct {
	Text string `json:"text"`
}

// UpdateOrderStatusRequest moves the order one step forward when Status is empty.
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}
