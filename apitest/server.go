// Package apitest hosts an in-process fake of the listings backend for
// package tests: the same routes, auth scheme and response shapes as the
// real service, backed by in-memory maps.
package apitest

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"realtydesk/models"
)

const jwtSecret = "apitest-secret"

type account struct {
	user         models.User
	passwordHash string
}

// Server is the fake backend. Seed it, mount Handler() on an httptest
// server, and point the client at it.
type Server struct {
	mu       sync.Mutex
	echo     *echo.Echo
	accounts map[string]account
	listings map[string]models.Listing
	order    []string
}

func New() *Server {
	s := &Server{
		echo:     echo.New(),
		accounts: make(map[string]account),
		listings: make(map[string]models.Listing),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) routes() {
	e := s.echo
	e.POST("/api/login", s.login)
	e.POST("/api/register", s.register)
	e.POST("/logout", s.logout)

	protected := e.Group("/api/listings", s.bearerMiddleware)
	protected.GET("", s.listListings)
	protected.POST("/create", s.createListing, s.adminOnly)
	protected.PUT("/:id", s.updateListing, s.adminOnly)
	protected.DELETE("/:id", s.deleteListing, s.adminOnly)
}

// SeedUser registers an account directly; role is stored verbatim so tests
// can exercise the client's "authenticated" mapping.
func (s *Server) SeedUser(email, password, role, fullName string) models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := models.User{
		ID:       uuid.NewString(),
		Email:    email,
		Role:     models.Role(role),
		FullName: fullName,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[email] = account{user: user, passwordHash: string(hash)}
	return user
}

// SeedListing stores a listing and returns its assigned id.
func (s *Server) SeedListing(l models.Listing) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	s.listings[l.ID] = l
	s.order = append(s.order, l.ID)
	return l.ID
}

// Listing returns a stored listing by id.
func (s *Server) Listing(id string) (models.Listing, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	return l, ok
}

func (s *Server) login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	s.mu.Lock()
	acct, ok := s.accounts[req.Username]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword([]byte(acct.passwordHash), []byte(req.Password)) != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
	}

	token, err := signToken(acct.user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate token"})
	}
	return c.JSON(http.StatusOK, models.AuthResponse{AccessToken: token, User: &acct.user})
}

func (s *Server) register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	s.mu.Lock()
	if _, exists := s.accounts[req.Username]; exists {
		s.mu.Unlock()
		return c.JSON(http.StatusConflict, map[string]string{"error": "User with this email already exists"})
	}
	hash, _ := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	user := models.User{
		ID:       uuid.NewString(),
		Email:    req.Username,
		Role:     "authenticated",
		FullName: req.FullName,
	}
	s.accounts[req.Username] = account{user: user, passwordHash: string(hash)}
	s.mu.Unlock()

	token, err := signToken(user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate token"})
	}
	return c.JSON(http.StatusCreated, models.AuthResponse{AccessToken: token, User: &user})
}

func (s *Server) logout(c echo.Context) error {
	return c.JSON(http.StatusOK, models.MessageResponse{Message: "Logged out"})
}

func (s *Server) listListings(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	listings := make([]models.Listing, 0, len(s.order))
	for _, id := range s.order {
		if l, ok := s.listings[id]; ok {
			listings = append(listings, l)
		}
	}
	return c.JSON(http.StatusOK, models.ListingsResponse{Listings: listings})
}

func (s *Server) createListing(c echo.Context) error {
	l, err := listingFromForm(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	l.ID = uuid.NewString()

	s.mu.Lock()
	s.listings[l.ID] = l
	s.order = append(s.order, l.ID)
	s.mu.Unlock()
	return c.JSON(http.StatusCreated, l)
}

func (s *Server) updateListing(c echo.Context) error {
	id := c.Param("id")
	s.mu.Lock()
	existing, ok := s.listings[id]
	s.mu.Unlock()
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Listing not found"})
	}

	l, err := listingFromForm(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	l.ID = id
	if len(l.Images) == 0 {
		l.Images = existing.Images
	}

	s.mu.Lock()
	s.listings[id] = l
	s.mu.Unlock()
	return c.JSON(http.StatusOK, l)
}

func (s *Server) deleteListing(c echo.Context) error {
	id := c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listings[id]; !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Listing not found"})
	}
	delete(s.listings, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return c.JSON(http.StatusOK, models.MessageResponse{Message: "Listing deleted successfully"})
}

func listingFromForm(c echo.Context) (models.Listing, error) {
	var l models.Listing
	l.Title = c.FormValue("title")
	l.Description = c.FormValue("description")
	l.Address = c.FormValue("location_address")
	l.PropertyType = models.PropertyType(c.FormValue("property_type"))
	l.Status = models.ListingStatus(c.FormValue("status"))

	if price := c.FormValue("price"); price != "" {
		parsed, err := strconv.ParseFloat(price, 64)
		if err != nil {
			return l, err
		}
		l.Price = parsed
	}

	if file, err := c.FormFile("images"); err == nil && file != nil {
		l.Images = models.ImageList{"uploads/" + file.Filename}
	}
	return l, nil
}

func (s *Server) bearerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Authorization header is required"})
		}
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid authorization header format"})
		}
		claims, err := validateToken(tokenParts[1])
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
		}
		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_role", claims.Role)
		return next(c)
	}
}

func (s *Server) adminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if role, _ := c.Get("user_role").(string); role != "admin" {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "Access denied"})
		}
		return next(c)
	}
}

type tokenClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func signToken(user models.User) (string, error) {
	claims := tokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

func validateToken(tokenString string) (*tokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*tokenClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrTokenInvalidClaims
}
