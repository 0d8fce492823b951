package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/auth"
	"storefront/internal/service"
	"storefront/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	catalog    *service.CatalogService
	cart       *service.CartService
	orders     *service.OrderService
	authSvc    *service.AuthService
	tokens     *auth.TokenService
	tokenTTL   time.Duration
	production bool
}

// NewHandler creates a new HTTP handler
func NewHandler(
	catalog *service.CatalogService,
	cart *service.CartService,
	orders *service.OrderService,
	authSvc *service.AuthService,
	tokens *auth.TokenService,
	tokenTTL time.Duration,
	env string,
) *Handler {
	return &Handler{
		catalog:    catalog,
		cart:       cart,
		orders:     orders,
		authSvc:    authSvc,
		tokens:     tokens,
		tokenTTL:   tokenTTL,
		production: env == "production",
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/login", h.login)
	router.POST("/register", h.register)
	router.GET("/check", h.check)

	router.GET("/products", h.listProducts)
	router.POST("/products", h.searchProducts)
	router.GET("/product", h.getProduct)

	authed := router.Group("/", authRequired(h.tokens))
	{
		authed.POST("/logout", h.logout)

		authed.GET("/cart", h.listCart)
		authed.POST("/cart", h.addToCart)
		authed.GET("/cart/count", h.cartCount)
		authed.PATCH("/cart/:id", h.updateCartItem)
		authed.DELETE("/cart/:id", h.deleteCartItem)

		authed.GET("/orders", h.listOrders)
		authed.GET("/orders/:id", h.getOrder)
		authed.POST("/orders", h.placeOrder)
	}
}

func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// setSessionCookie sets the http-only session cookie carrying the token
func (h *Handler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(tokenCookie, token, maxAge, "/", "", h.production, true)
}

// login handles POST /login
func (h *Handler) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, token, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	h.setSessionCookie(c, token, int(h.tokenTTL.Seconds()))
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    gin.H{"id": user.ID, "email": user.Email},
	})
}

// register handles POST /register
func (h *Handler) register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// logout clears the session cookie. The token itself stays valid until its
// natural expiry; there is no server-side revocation.
func (h *Handler) logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// check reports whether the caller holds a valid session
func (h *Handler) check(c *gin.Context) {
	token, err := c.Cookie(tokenCookie)
	if err != nil || token == "" {
		c.JSON(http.StatusOK, gin.H{"isLoggedIn": false})
		return
	}

	identity, err := h.tokens.Verify(token)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"isLoggedIn": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"isLoggedIn": true, "identity": identity})
}

// listProducts handles GET /products
func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred fetching products"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// searchProducts handles POST /products
func (h *Handler) searchProducts(c *gin.Context) {
	var req struct {
		Search string `json:"search"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	products, err := h.catalog.SearchProducts(c.Request.Context(), req.Search)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred fetching products"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// getProduct handles GET /product?id=
func (h *Handler) getProduct(c *gin.Context) {
	idStr := c.Query("id")
	if idStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Product ID is required"})
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid product ID"})
		return
	}

	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred fetching products"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// listCart handles GET /cart
func (h *Handler) listCart(c *gin.Context) {
	identity := callerIdentity(c)

	lines, err := h.cart.List(c.Request.Context(), identity.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cartItems": lines})
}

// addToCart handles POST /cart
func (h *Handler) addToCart(c *gin.Context) {
	identity := callerIdentity(c)

	var req struct {
		ProductID int64 `json:"productId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product ID is required"})
		return
	}

	item, err := h.cart.AddItem(c.Request.Context(), identity.UserID, req.ProductID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, item)
}

// cartCount handles GET /cart/count
func (h *Handler) cartCount(c *gin.Context) {
	identity := callerIdentity(c)

	count, err := h.cart.Count(c.Request.Context(), identity.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart count"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// updateCartItem handles PATCH /cart/:id
func (h *Handler) updateCartItem(c *gin.Context) {
	identity := callerIdentity(c)

	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart item ID"})
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quantity provided"})
		return
	}

	item, err := h.cart.SetQuantity(c.Request.Context(), identity.UserID, itemID, req.Quantity)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": item})
}

// deleteCartItem handles DELETE /cart/:id
func (h *Handler) deleteCartItem(c *gin.Context) {
	identity := callerIdentity(c)

	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart item ID"})
		return
	}

	if err := h.cart.Remove(c.Request.Context(), identity.UserID, itemID); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart item deleted successfully"})
}

// listOrders handles GET /orders
func (h *Handler) listOrders(c *gin.Context) {
	identity := callerIdentity(c)

	orders, err := h.orders.ListOrders(c.Request.Context(), identity.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// getOrder handles GET /orders/:id
func (h *Handler) getOrder(c *gin.Context) {
	identity := callerIdentity(c)

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), identity.UserID, orderID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// placeOrder handles POST /orders
func (h *Handler) placeOrder(c *gin.Context) {
	identity := callerIdentity(c)

	var req service.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	order, err := h.orders.PlaceOrder(c.Request.Context(), identity.UserID, &req)
	if err != nil {
		status := statusForError(err)
		msg := err.Error()
		if status == http.StatusInternalServerError {
			msg = "Failed to create order"
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// statusForError maps domain errors to HTTP statuses. Ownership failures map
// to not found so the surface never leaks whether a resource exists.
func statusForError(err error) int {
	switch {
	case errors.Is(err, store.ErrProductNotFound),
		errors.Is(err, store.ErrCartItemNotFound),
		errors.Is(err, store.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, service.ErrPasswordMismatch),
		errors.Is(err, service.ErrMissingFields),
		errors.Is(err, store.ErrEmailTaken):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
