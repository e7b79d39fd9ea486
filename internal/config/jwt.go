package config

import (
	"crypto/rsa"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type PlayerClaims struct {
	PlayerId int64  `json:"player_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func NewPlayerClaims(playerId int64, username string) *PlayerClaims {
	return &PlayerClaims{
		PlayerId: playerId,
		Username: username,
	}
}

type JWT struct {
	publicKey     *rsa.PublicKey
	privateKey    *rsa.PrivateKey
	signingMethod jwt.SigningMethod
	TokenLifetime time.Duration
}

func loadKey(name string) ([]byte, error) {
	key, ok := os.LookupEnv(name)
	if ok {
		return []byte(key), nil
	}
	path, ok := os.LookupEnv(name + "_FILE")
	if !ok {
		return nil, fmt.Errorf("no %s or %s_FILE env variable set", name, name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s_FILE: %w", name, err)
	}
	return data, nil
}

func NewJWT() (*JWT, error) {
	privatePEM, err := loadKey("JWT_PRIVATE_KEY")
	if err != nil {
		return nil, err
	}
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privatePEM)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT private key: %w", err)
	}

	publicPEM, err := loadKey("JWT_PUBLIC_KEY")
	if err != nil {
		return nil, err
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT public key: %w", err)
	}

	return NewJWTWithKeys(privateKey, publicKey), nil
}

func NewJWTWithKeys(privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey) *JWT {
	return &JWT{
		privateKey:    privateKey,
		publicKey:     publicKey,
		signingMethod: jwt.SigningMethodRS256,
		TokenLifetime: time.Hour * 24 * 30,
	}
}

// Sign stamps claims with an expiry of TokenLifetime and signs them.
func (j *JWT) Sign(claims *PlayerClaims) (string, error) {
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(j.TokenLifetime))
	return jwt.NewWithClaims(j.signingMethod, claims).SignedString(j.privateKey)
}

func (j *JWT) ParseWithClaims(tokenString string, claims jwt.Claims) (*jwt.Token, error) {
	return jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			return j.publicKey, nil
		},
		jwt.WithValidMethods([]string{j.signingMethod.Alg()}),
	)
}
