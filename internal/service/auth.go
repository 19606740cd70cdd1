// 관리용 API 보호를 위한 인증 서비스 정의
//
// 환경변수:
//   - JWT_SECRET: 액세스 토큰 서명 키 (필수)
//   - JWT_ACCESS_TTL: 액세스 토큰 유효기간 (default: 15m)
//   - ADMIN_LOGIN_ID: 관리자 계정 ID (default: admin)
//   - ADMIN_PASSWORD_HASH: 관리자 비밀번호 bcrypt 해시 (필수)

package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/alert-bridge/backend/internal/config"
	"github.com/alert-bridge/backend/internal/model"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrMisconfigured = errors.New("auth config invalid")
)

type AuthService struct {
	jwtSecret    []byte
	accessTTL    time.Duration
	adminLoginID string
	passwordHash string
}

type authClaims struct {
	LoginID string `json:"loginId"`
	jwt.RegisteredClaims
}

func NewAuthService(cfg config.AuthConfig) (*AuthService, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET is required", ErrMisconfigured)
	}
	if cfg.AdminPasswordHash == "" {
		return nil, fmt.Errorf("%w: ADMIN_PASSWORD_HASH is required", ErrMisconfigured)
	}

	accessTTL, err := time.ParseDuration(cfg.JWTAccessTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JWT_ACCESS_TTL", ErrMisconfigured)
	}

	return &AuthService{
		jwtSecret:    []byte(cfg.JWTSecret),
		accessTTL:    accessTTL,
		adminLoginID: cfg.AdminLoginID,
		passwordHash: cfg.AdminPasswordHash,
	}, nil
}

// Login - 관리자 계정 검증 후 액세스 토큰 발급
func (s *AuthService) Login(loginID, password string) (string, int64, error) {
	loginID = strings.TrimSpace(loginID)
	if loginID == "" || password == "" {
		return "", 0, ErrInvalidInput
	}

	if loginID != s.adminLoginID {
		return "", 0, ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return "", 0, ErrUnauthorized
	}

	return s.generateAccessToken(loginID)
}

func (s *AuthService) ParseAccessToken(tokenStr string) (*model.AuthUser, error) {
	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthorized
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized
	}

	return &model.AuthUser{
		LoginID: claims.LoginID,
	}, nil
}

func (s *AuthService) generateAccessToken(loginID string) (string, int64, error) {
	now := time.Now()
	claims := authClaims{
		LoginID: loginID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   loginID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", 0, err
	}

	return signed, int64(s.accessTTL.Seconds()), nil
}
