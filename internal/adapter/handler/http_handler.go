package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rl1809/bookstore/internal/adapter/middleware"
	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/core/service"
)

const maxBodyBytes = 1 << 20

type HTTPHandler struct {
	users   *service.UserService
	catalog *service.CatalogService
	carts   *service.CartService
	orders  *service.OrderService
	tokens  *middleware.TokenIssuer
	log     zerolog.Logger
}

type MessageResponse struct {
	Message string `json:"message"`
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateUserResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type CreateBookRequest struct {
	Titulo    string   `json:"titulo"`
	Autor     string   `json:"autor"`
	Anio      *int     `json:"anio"`
	Categoria *string  `json:"categoria"`
	Sinopsis  *string  `json:"sinopsis"`
	Precio    *float64 `json:"precio"`
	Cantidad  *int     `json:"cantidad"`
}

type CreateBookResponse struct {
	Message string `json:"message"`
	BookID  int64  `json:"bookId"`
}

type AddToCartRequest struct {
	UserID   int64 `json:"userId"`
	BookID   int64 `json:"bookId"`
	Quantity int   `json:"quantity"`
}

type AddToCartResponse struct {
	Message string            `json:"message"`
	Cart    []domain.CartItem `json:"cart"`
}

type CheckoutRequest struct {
	UserID int64 `json:"userId"`
}

type CheckoutResponse struct {
	Message string `json:"message"`
	OrderID int64  `json:"orderId"`
}

type CreateCategoryRequest struct {
	Name string `json:"name"`
}

type CreateCategoryResponse struct {
	Message    string `json:"message"`
	CategoryID int64  `json:"categoryId"`
}

func NewHTTPHandler(
	users *service.UserService,
	catalog *service.CatalogService,
	carts *service.CartService,
	orders *service.OrderService,
	tokens *middleware.TokenIssuer,
	log zerolog.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		users:   users,
		catalog: catalog,
		carts:   carts,
		orders:  orders,
		tokens:  tokens,
		log:     log,
	}
}

func (h *HTTPHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		h.internalError(w, r, err, "list users", "Ocurrió un error al obtener los usuarios")
		return
	}

	writeJSON(w, http.StatusOK, users)
}

func (h *HTTPHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	id, err := h.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			writeMessage(w, http.StatusBadRequest, "Todos los campos son requeridos")
			return
		}
		h.internalError(w, r, err, "create user", "Ocurrió un error al crear el usuario")
		return
	}

	writeJSON(w, http.StatusCreated, CreateUserResponse{
		Message: "Usuario creado exitosamente",
		UserID:  id,
	})
}

func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			writeMessage(w, http.StatusBadRequest, "El email y la contraseña son requeridos")
		case errors.Is(err, service.ErrInvalidCredentials):
			writeMessage(w, http.StatusUnauthorized, "Credenciales inválidas")
		default:
			h.internalError(w, r, err, "login", "Ocurrió un error al iniciar sesión")
		}
		return
	}

	token, err := h.tokens.Issue(*user)
	if err != nil {
		h.internalError(w, r, err, "issue token", "Ocurrió un error al iniciar sesión")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Message: "Inicio de sesión exitoso",
		Token:   token,
	})
}

func (h *HTTPHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.catalog.ListBooks(r.Context())
	if err != nil {
		h.internalError(w, r, err, "list books", "Ocurrió un error al obtener los libros")
		return
	}

	writeJSON(w, http.StatusOK, books)
}

func (h *HTTPHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req CreateBookRequest
	if !decodeBody(w, r, &req) {
		return
	}

	id, err := h.catalog.CreateBook(r.Context(), service.NewBook{
		Titulo:    req.Titulo,
		Autor:     req.Autor,
		Anio:      req.Anio,
		Categoria: req.Categoria,
		Sinopsis:  req.Sinopsis,
		Precio:    req.Precio,
		Cantidad:  req.Cantidad,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			writeMessage(w, http.StatusBadRequest, "Campos requeridos: titulo, autor, anio, precio, cantidad")
			return
		}
		h.internalError(w, r, err, "create book", "Ocurrió un error al crear el libro")
		return
	}

	writeJSON(w, http.StatusCreated, CreateBookResponse{
		Message: "Libro creado exitosamente",
		BookID:  id,
	})
}

func (h *HTTPHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Libro no encontrado")
		return
	}

	book, err := h.catalog.GetBook(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Libro no encontrado")
			return
		}
		h.internalError(w, r, err, "get book", "Ocurrió un error al obtener el libro")
		return
	}

	writeJSON(w, http.StatusOK, book)
}

func (h *HTTPHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req AddToCartRequest
	if !decodeBody(w, r, &req) {
		return
	}

	items, err := h.carts.Add(r.Context(), req.UserID, req.BookID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			writeMessage(w, http.StatusBadRequest, "El ID de usuario, ID de libro y cantidad son requeridos, y la cantidad debe ser al menos 1")
		case errors.Is(err, domain.ErrNotFound):
			writeMessage(w, http.StatusNotFound, "Libro no encontrado")
		default:
			h.internalError(w, r, err, "add to cart", "Ocurrió un error al agregar el libro al carrito")
		}
		return
	}

	writeJSON(w, http.StatusCreated, AddToCartResponse{
		Message: "Libro agregado al carrito",
		Cart:    items,
	})
}

func (h *HTTPHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil || userID <= 0 {
		writeMessage(w, http.StatusBadRequest, "El ID de usuario debe ser proporcionado")
		return
	}

	cart, err := h.carts.Cart(r.Context(), userID)
	if err != nil {
		h.internalError(w, r, err, "get cart", "Ocurrió un error al obtener el carrito")
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if !decodeBody(w, r, &req) {
		return
	}

	orderID, err := h.carts.Checkout(r.Context(), req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			writeMessage(w, http.StatusBadRequest, "El ID de usuario debe ser proporcionado")
		case errors.Is(err, domain.ErrEmptyCart):
			writeMessage(w, http.StatusBadRequest, "Necesitas pedir al menos un libro para realizar un pedido")
		case errors.Is(err, domain.ErrCheckoutInProgress):
			writeMessage(w, http.StatusConflict, "Ya hay un pedido en curso para este carrito")
		default:
			h.internalError(w, r, err, "checkout", "Ocurrió un error al realizar el pedido")
		}
		return
	}

	writeJSON(w, http.StatusCreated, CheckoutResponse{
		Message: "Pedido realizado exitosamente",
		OrderID: orderID,
	})
}

func (h *HTTPHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	id, err := h.catalog.CreateCategory(r.Context(), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			writeMessage(w, http.StatusBadRequest, "El nombre de la categoría es requerido")
		case errors.Is(err, domain.ErrDuplicate):
			writeMessage(w, http.StatusConflict, "La categoría ya existe")
		default:
			h.internalError(w, r, err, "create category", "Ocurrió un error al crear la categoría")
		}
		return
	}

	writeJSON(w, http.StatusCreated, CreateCategoryResponse{
		Message:    "Categoría creada exitosamente",
		CategoryID: id,
	})
}

func (h *HTTPHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context())
	if err != nil {
		h.internalError(w, r, err, "list orders", "Ocurrió un error al obtener los pedidos")
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

func (h *HTTPHandler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.users.ListProfiles(r.Context())
	if err != nil {
		h.internalError(w, r, err, "admin list users", "Ocurrió un error al obtener los usuarios")
		return
	}

	writeJSON(w, http.StatusOK, profiles)
}

func (h *HTTPHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "No token provided, authorization denied")
		return
	}

	profile, err := h.users.Profile(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Usuario no encontrado")
			return
		}
		h.internalError(w, r, err, "get profile", "Ocurrió un error al obtener el perfil")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// internalError logs the cause and answers with a generic 500.
func (h *HTTPHandler) internalError(w http.ResponseWriter, r *http.Request, err error, op, message string) {
	log := zerolog.Ctx(r.Context())
	if log.GetLevel() == zerolog.Disabled {
		log = &h.log
	}
	log.Error().Err(err).Str("op", op).Msg("request failed")
	writeMessage(w, http.StatusInternalServerError, message)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, "Cuerpo de la solicitud inválido")
		return false
	}
	return true
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, MessageResponse{Message: message})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
