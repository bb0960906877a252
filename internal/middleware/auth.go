package middleware

import (
	"crypto/rsa"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/xieumar/HNG-Framez/internal/user"
)

// Verifier checks identity-provider session tokens. The provider signs with
// RS256; we hold only the public key and trust the claims it certifies.
type Verifier struct {
	publicKey *rsa.PublicKey
	users     *user.Service
}

func NewVerifier(publicKeyPEM string, users *user.Service) (*Verifier, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("parse auth public key: %w", err)
	}
	return &Verifier{publicKey: key, users: users}, nil
}

func (v *Verifier) parse(tokenStr string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return v.publicKey, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type")
	}
	return claims, nil
}

// setIdentity stores the verified claims and, when the user is already
// provisioned, the internal user id.
func (v *Verifier) setIdentity(c *gin.Context, claims jwt.MapClaims) error {
	externalID, ok := claims["sub"].(string)
	if !ok || externalID == "" {
		return fmt.Errorf("token missing subject")
	}
	c.Set("external_id", externalID)
	if name, ok := claims["name"].(string); ok {
		c.Set("claim_name", name)
	}
	if email, ok := claims["email"].(string); ok {
		c.Set("claim_email", email)
	}

	// map to the internal user when already provisioned; sync-on-sign-in
	// endpoints work from the raw claims alone
	profile, err := v.users.GetCurrent(c.Request.Context(), externalID)
	if err != nil {
		return fmt.Errorf("resolve user: %w", err)
	}
	if profile != nil {
		c.Set("user_id", profile.ID)
	}
	return nil
}

// Auth rejects requests without a valid bearer token.
func (v *Verifier) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		claims, err := v.parse(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if err := v.setIdentity(c, claims); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Next()
	}
}
