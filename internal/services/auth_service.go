package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"clipvault/internal/models"
	"clipvault/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// bcryptCost is deliberately above the library default; registration is
// rare enough that the extra latency is acceptable.
const bcryptCost = 12

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo         repositories.UserRepository
	jwtSecret        []byte
	tokenDurat       time.Duration // Duration for which JWT is valid
	allowAdminSignup bool
}

// NewAuthService creates a new AuthService. allowAdminSignup controls
// whether a registration may set the admin flag on itself; when false the
// requested flag is ignored.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, allowAdminSignup bool) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		jwtSecret:        []byte(jwtSecret),
		tokenDurat:       7 * 24 * time.Hour, // Token valid for 7 days
		allowAdminSignup: allowAdminSignup,
	}
}

// Register creates a new account with a hashed password and returns a
// signed token for it. The email check is an exact match.
func (s *AuthService) Register(email, password string, isAdminRequested bool) (string, error) {
	if existingUser, err := s.userRepo.GetByEmail(email); err == nil && existingUser != nil {
		return "", ErrDuplicateEmail
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hashedPassword),
		IsAdmin:  isAdminRequested && s.allowAdminSignup,
	}
	if err := s.userRepo.Create(user); err != nil {
		return "", fmt.Errorf("failed to register user: %w", err)
	}

	return s.generateToken(user.ID)
}

// Login authenticates a user and returns a JWT token if successful. An
// unknown email and a wrong password yield the identical error so callers
// cannot enumerate accounts; a storage fault stays a storage fault.
func (s *AuthService) Login(email, password string) (string, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.generateToken(user.ID)
}

// generateToken signs a token carrying the user identity.
func (s *AuthService) generateToken(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  userID,
		"exp": time.Now().Add(s.tokenDurat).Unix(), // Token expiration time
		"iat": time.Now().Unix(),                   // Issued at time
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// GetUserByID loads the account behind a validated token's identity claim.
func (s *AuthService) GetUserByID(id string) (*models.User, error) {
	return s.userRepo.GetByID(id)
}
