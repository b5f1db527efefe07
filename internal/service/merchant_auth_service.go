package service

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/storekart/storekart/internal/config"
	"github.com/storekart/storekart/internal/logger"
	"github.com/storekart/storekart/internal/models"
	"github.com/storekart/storekart/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// MerchantClaims is the merchant-session JWT payload.
type MerchantClaims struct {
	MerchantID uint   `json:"merchant_id"`
	Email      string `json:"email"`
	jwt.RegisteredClaims
}

// MerchantAuthService authenticates merchant accounts and issues session
// tokens for the dashboard API.
type MerchantAuthService struct {
	merchantRepo repository.MerchantRepository
	jwtCfg       *config.JWTConfig
}

// NewMerchantAuthService creates a merchant auth service.
func NewMerchantAuthService(merchantRepo repository.MerchantRepository, jwtCfg *config.JWTConfig) *MerchantAuthService {
	return &MerchantAuthService{merchantRepo: merchantRepo, jwtCfg: jwtCfg}
}

// Login verifies credentials and returns a signed token with the merchant.
// A missing account and a wrong password produce the same error.
func (s *MerchantAuthService) Login(email, password string) (string, *models.Merchant, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	merchant, err := s.merchantRepo.GetByEmail(normalized)
	if err != nil {
		return "", nil, err
	}
	if merchant == nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(merchant.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !merchant.IsActive {
		return "", nil, ErrMerchantDisabled
	}

	token, err := s.issueToken(merchant)
	if err != nil {
		return "", nil, err
	}
	logger.Infow("merchant_login", "merchant_id", merchant.ID)
	return token, merchant, nil
}

// ParseToken validates a session token and returns its claims.
func (s *MerchantAuthService) ParseToken(tokenString string) (*MerchantClaims, error) {
	claims := &MerchantClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.jwtCfg.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// HashPassword hashes a plaintext password for storage.
func (s *MerchantAuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *MerchantAuthService) issueToken(merchant *models.Merchant) (string, error) {
	expireHours := s.jwtCfg.ExpireHours
	if expireHours <= 0 {
		expireHours = 24
	}
	now := time.Now()
	claims := MerchantClaims{
		MerchantID: merchant.ID,
		Email:      merchant.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expireHours) * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtCfg.SecretKey))
}
