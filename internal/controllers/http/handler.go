package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"eatzone/internal/domain"
	"eatzone/internal/infra/proof"
	"eatzone/internal/services"
	"eatzone/internal/session"
)

type Handler struct {
	sessions *session.Manager
	catalog  *services.CatalogService
	proofs   proof.Encoder
}

func NewHandler(m *session.Manager, cat *services.CatalogService, enc proof.Encoder) *Handler {
	return &Handler{sessions: m, catalog: cat, proofs: enc}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.Health)

	r.GET("/catalog", h.SearchCatalog)
	r.GET("/catalog/canteens", h.ListCanteens)

	r.POST("/sessions", h.CreateSession)
	s := r.Group("/sessions/:id", h.loadSession)
	{
		s.GET("", h.GetSession)
		s.DELETE("", h.CloseSession)
		s.GET("/events", h.StreamSession)

		s.POST("/login", h.Login)
		s.POST("/register", h.Register)
		s.POST("/logout", h.Logout)
		s.POST("/navigate", h.Navigate)

		s.POST("/cart", h.AddToCart)
		s.PATCH("/cart/:itemId", h.UpdateQuantity)

		s.POST("/checkout", h.BeginCheckout)
		s.DELETE("/checkout", h.CancelCheckout)
		s.POST("/checkout/submit", h.SubmitCheckout)

		s.POST("/chat", h.OpenChat)
		s.DELETE("/chat", h.CloseChat)
		s.POST("/chat/messages", h.SendMessage)

		s.GET("/orders", h.ListOrders)
		s.POST("/orders/:orderId/status", h.UpdateOrderStatus)
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": h.sessions.Len()})
}

func (h *Handler) SearchCatalog(c *gin.Context) {
	items, err := h.catalog.Search(c.Request.Context(), c.Query("q"), c.Query("canteen"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) ListCanteens(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"canteens": h.catalog.Canteens()})
}

func (h *Handler) CreateSession(c *gin.Context) {
	s := h.sessions.Create()
	c.JSON(http.StatusCreated, s.Render())
}

func (h *Handler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, currentSession(c).Render())
}

func (h *Handler) CloseSession(c *gin.Context) {
	if err := h.sessions.Close(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// StreamSession pushes a fresh snapshot every time the session changes,
// until the client goes away or the session is closed.
func (h *Handler) StreamSession(c *gin.Context) {
	s := currentSession(c)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	if s.Closed() {
		c.SSEvent("snapshot", s.Render())
		return
	}

	updates := make(chan struct{}, 1)
	unsubscribe, err := h.sessions.Subscribe(s.ID(), func(uint64) {
		select {
		case updates <- struct{}{}:
		default:
		}
	})
	if err != nil {
		respondError(c, err)
		return
	}
	defer unsubscribe()

	c.SSEvent("snapshot", s.Render())
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			c.SSEvent("snapshot", s.Render())
			c.Writer.Flush()
			if s.Closed() {
				return
			}
		}
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s := currentSession(c)
	h.respond(c, s, s.Login(req.Email, req.Password))
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s := currentSession(c)
	h.respond(c, s, s.Register(req.Name, req.Email, req.Password, req.ConfirmPassword))
}

func (h *Handler) Logout(c *gin.Context) {
	s := currentSession(c)
	h.respond(c, s, s.Logout())
}

func (h *Handler) Navigate(c *gin.Context) {
	var req NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s := currentSession(c)
	h.respond(c, s, s.Navigate(domain.View(req.View)))
}

func (h *Handler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	s := currentSession(c)
	h.respond(c, s, s.AddToCart(req.ItemID, req.Quantity))
}

func (h *Handler) UpdateQuantity(c *gin.Context) {
	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s := currentSession(c)
	h.respond(c, s, s.UpdateQuantity(c.Param("itemId"), *req.Quantity))
}

func (h *Handler) BeginCheckout(c *gin.Context) {
	s := currentSession(c)
	h.respond(c, s, s.BeginCheckout())
}

func (h *Handler) CancelCheckout(c *gin.Context) {
	s := currentSession(c)
	h.respond(c, s, s.CancelCheckout())
}

// SubmitCheckout accepts either JSON with an already encoded proof or a
// multipart form carrying the image file itself.
func (h *Handler) SubmitCheckout(c *gin.Context) {
	var req SubmitCheckoutRequest
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		req.PickupTime = c.PostForm("pickupTime")
		encoded, err := h.encodeProof(c)
		if err != nil {
			respondError(c, err)
			return
		}
		req.PaymentProof = encoded
	} else if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s := currentSession(c)
	order, err := s.SubmitCheckout(c.Request.Context(), req.PaymentProof, req.PickupTime)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order, "session": s.Render()})
}

// encodeProof returns an empty proof when no file was sent, leaving the
// rejection to checkout validation.
func (h *Handler) encodeProof(c *gin.Context) (string, error) {
	fh, err := c.FormFile("paymentProof")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return h.proofs.Encode(f)
}

func (h *Handler) OpenChat(c *gin.Context) {
	var req OpenChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s := currentSession(c)
	h.respond(c, s, s.OpenChat(req.SellerID))
}

func (h *Handler) CloseChat(c *gin.Context) {
	s := currentSession(c)
	h.respond(c, s, s.CloseChat())
}

func (h *Handler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s := currentSession(c)
	h.respond(c, s, s.SendMessage(req.Text))
}

func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := currentSession(c).Orders()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": session.NewOrderViews(orders)})
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status := domain.OrderStatus(req.Status)
	if status != "" && !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown order status " + req.Status})
		return
	}

	order, err := currentSession(c).UpdateOrderStatus(c.Request.Context(), c.Param("orderId"), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session.NewOrderViews([]domain.Order{*order})[0])
}

// respond renders the session after a state change, or maps err to a status.
func (h *Handler) respond(c *gin.Context, s *session.Session, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Render())
}
