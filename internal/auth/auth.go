package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	issuer   = "danceslot-api"
	audience = "danceslot-clients"

	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// Role decides which parts of the API a token opens. Registered dancers get
// RoleUser; the single studio administrator from the config gets RoleAdmin.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// AdminUserID is the subject of tokens issued to the studio administrator.
const AdminUserID = "admin"

var (
	ErrTokenExpired     = errors.New("token expired")
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrUnknownRole      = errors.New("token carries an unknown role")
	ErrEmptyJWTSecret   = errors.New("jwt secret cannot be empty")
)

// Identity is who a request acts for.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Admin is the identity of the configured studio administrator.
func Admin(email string) Identity {
	return Identity{UserID: AdminUserID, Email: email, Role: RoleAdmin}
}

type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

type Claims struct {
	Identity
	Kind TokenKind `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is what login, registration and refresh hand back. Refresh
// leaves RefreshToken empty.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in" example:"900"`
}

// Tokens signs and verifies HS256 tokens with one shared secret.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

func NewTokens(secret string) (*Tokens, error) {
	if secret == "" {
		return nil, ErrEmptyJWTSecret
	}
	return &Tokens{secret: []byte(secret), now: time.Now}, nil
}

// Issue signs a fresh access and refresh token for id.
func (t *Tokens) Issue(id Identity) (TokenPair, error) {
	access, err := t.sign(id, KindAccess, AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := t.sign(id, KindRefresh, RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(AccessTokenTTL.Seconds()),
	}, nil
}

// Refresh trades a refresh token for a new access token carrying the same
// identity.
func (t *Tokens) Refresh(raw string) (TokenPair, error) {
	claims, err := t.Parse(raw, KindRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	access, err := t.sign(claims.Identity, KindAccess, AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, ExpiresIn: int(AccessTokenTTL.Seconds())}, nil
}

// Parse verifies raw and checks that it is a token of the wanted kind.
func (t *Tokens) Parse(raw string, kind TokenKind) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, t.key,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Kind != kind {
		return nil, ErrInvalidTokenType
	}
	if !claims.Role.Valid() {
		return nil, ErrUnknownRole
	}
	return claims, nil
}

func (t *Tokens) sign(id Identity, kind TokenKind, ttl time.Duration) (string, error) {
	now := t.now()
	claims := Claims{
		Identity: id,
		Kind:     kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.UserID,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *Tokens) key(*jwt.Token) (interface{}, error) {
	return t.secret, nil
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPassword(hashedPassword, plainPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword)) == nil
}
