package domain

import "time"

type OrderStatus string

const (
	StatusPendingPayment  OrderStatus = "pending_payment"
	StatusPaymentUploaded OrderStatus = "payment_uploaded"
	StatusConfirmed       OrderStatus = "confirmed"
	StatusReady           OrderStatus = "ready"
	StatusCompleted       OrderStatus = "completed"
	StatusCancelled       OrderStatus = "cancelled"
)

var statusLabels = map[OrderStatus]string{
	StatusPendingPayment:  "Menunggu Pembayaran",
	StatusPaymentUploaded: "Pembayaran Diupload",
	StatusConfirmed:       "Dikonfirmasi",
	StatusReady:           "Siap Diambil",
	StatusCompleted:       "Selesai",
	StatusCancelled:       "Dibatalkan",
}

// Label is the text shown next to an order in the orders view.
func (s OrderStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s OrderStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

type Order struct {
	ID           string      `json:"id"`
	Items        []CartItem  `json:"items"`
	Total        int64       `json:"total"`
	Status       OrderStatus `json:"status"`
	PaymentProof string      `json:"paymentProof,omitempty"`
	PickupTime   string      `json:"pickupTime,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	SellerID     string      `json:"sellerId"`
}

// Clone returns a copy that shares no slices with o.
func (o Order) Clone() Order {
	c := o
	c.Items = append([]CartItem(nil), o.Items...)
	return c
}
