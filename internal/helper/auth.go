package helper

import (
	"errors"
	"strings"
	"time"

	"github.com/SundayYogurt/eventhub_service/internal/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Scope selects the signing key. Admin and user tokens are never
// interchangeable, whatever role their claims carry.
type Scope string

const (
	ScopeUser  Scope = "user"
	ScopeAdmin Scope = "admin"
)

const issuer = "eventhub"

var ErrInvalidToken = errors.New("invalid token")

type Identity struct {
	ID    uint        `json:"id"`
	Role  domain.Role `json:"role"`
	Email string      `json:"email"`
}

type Claims struct {
	ID    uint   `json:"id"`
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type scopeKey struct {
	secret []byte
	ttl    time.Duration
}

type Auth struct {
	keys map[Scope]scopeKey
	now  func() time.Time
}

func SetupAuth(userSecret, adminSecret string, userTTL, adminTTL time.Duration) Auth {
	return Auth{
		keys: map[Scope]scopeKey{
			ScopeUser:  {secret: []byte(userSecret), ttl: userTTL},
			ScopeAdmin: {secret: []byte(adminSecret), ttl: adminTTL},
		},
		now: time.Now,
	}
}

func (a Auth) GenerateToken(scope Scope, id Identity) (string, error) {
	key, ok := a.keys[scope]
	if !ok || len(key.secret) == 0 {
		return "", errors.New("unknown token scope")
	}
	if id.ID == 0 || id.Email == "" {
		return "", errors.New("required inputs are missing to generate token")
	}

	now := a.now()
	claims := Claims{
		ID:    id.ID,
		Role:  string(id.Role),
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.Email,
			Audience:  jwt.ClaimStrings{string(scope)},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(key.ttl)),
		},
	}

	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key.secret)
	if err != nil {
		return "", errors.New("unable to sign the token")
	}
	return tokenStr, nil
}

// VerifyToken checks signature, expiry and audience under the given scope.
// Every failure is reported as ErrInvalidToken.
func (a Auth) VerifyToken(scope Scope, tokenString string) (Identity, error) {
	key, ok := a.keys[scope]
	if !ok || len(key.secret) == 0 {
		return Identity{}, ErrInvalidToken
	}

	tokenString = strings.TrimSpace(tokenString)
	// support both:
	// - "Bearer <token>"
	// - "<token>"
	if strings.HasPrefix(strings.ToLower(tokenString), "bearer ") {
		tokenString = strings.TrimSpace(tokenString[len("bearer "):])
	}
	if tokenString == "" {
		return Identity{}, ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return key.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(string(scope)),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !token.Valid || claims.ID == 0 {
		return Identity{}, ErrInvalidToken
	}

	return Identity{
		ID:    claims.ID,
		Role:  domain.Role(claims.Role),
		Email: claims.Email,
	}, nil
}

func GetCurrentUser(ctx *fiber.Ctx) (Identity, error) {
	claims, ok := ctx.Locals("user").(Identity)
	if !ok || claims.ID == 0 {
		return Identity{}, errors.New("missing auth user in context")
	}
	return claims, nil
}

func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func VerifyPassword(plain, hashed string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)); err != nil {
		return errors.New("invalid email or password")
	}
	return nil
}
