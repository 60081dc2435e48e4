package domain

type View string

const (
	ViewLogin    View = "login"
	ViewRegister View = "register"
	ViewHome     View = "home"
	ViewChat     View = "chat"
	ViewCart     View = "cart"
	ViewOrders   View = "orders"
)

func (v View) Valid() bool {
	switch v {
	case ViewLogin, ViewRegister, ViewHome, ViewChat, ViewCart, ViewOrders:
		return true
	}
	return false
}

// Public views are the only ones reachable without a user.
func (v View) Public() bool {
	return v == ViewLogin || v == ViewRegister
}
