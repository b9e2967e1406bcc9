package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type Claims struct {
	UserID         uint   `json:"user_id"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	OrganizationID uint   `json:"organization_id"`
	jwt.RegisteredClaims
}

var jwtSecret = []byte("leadflow-dev-secret")

// Init overrides the signing secret. Called once from main with the
// configured value.
func Init(secret string) {
	if secret != "" {
		jwtSecret = []byte(secret)
	}
}

func GenerateToken(userID uint, email, role string, organizationID uint) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:         userID,
		Email:          email,
		Role:           role,
		OrganizationID: organizationID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})

	return token.SignedString(jwtSecret)
}

func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, err
}
