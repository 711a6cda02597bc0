package config

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTKeys hold PEM encoded RSA keys, given inline or as file paths.
type JWTKeys struct {
	PrivateKey     string        `env:"JWT_PRIVATE_KEY"`
	PrivateKeyFile string        `env:"JWT_PRIVATE_KEY_FILE,file"`
	PublicKey      string        `env:"JWT_PUBLIC_KEY"`
	PublicKeyFile  string        `env:"JWT_PUBLIC_KEY_FILE,file"`
	TokenLifetime  time.Duration `env:"JWT_TOKEN_LIFETIME" envDefault:"720h"`
}

func (k JWTKeys) privatePEM() string {
	if k.PrivateKey != "" {
		return k.PrivateKey
	}
	return k.PrivateKeyFile
}

func (k JWTKeys) publicPEM() string {
	if k.PublicKey != "" {
		return k.PublicKey
	}
	return k.PublicKeyFile
}

func (k JWTKeys) Enabled() bool {
	return k.privatePEM() != "" && k.publicPEM() != ""
}

type JWT struct {
	publicKey     *rsa.PublicKey
	privateKey    *rsa.PrivateKey
	signingMethod jwt.SigningMethod
	tokenLifetime time.Duration
}

func NewJWT(keys JWTKeys) (*JWT, error) {
	if !keys.Enabled() {
		return nil, fmt.Errorf("no JWT private and public key set")
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(keys.privatePEM()))
	if err != nil {
		return nil, fmt.Errorf("unable to parse JWT private key: %w", err)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM([]byte(keys.publicPEM()))
	if err != nil {
		return nil, fmt.Errorf("unable to parse JWT public key: %w", err)
	}

	j := &JWT{
		privateKey:    privateKey,
		publicKey:     publicKey,
		signingMethod: jwt.SigningMethodRS256,
		tokenLifetime: keys.TokenLifetime,
	}

	return j, nil
}

type PlayerClaims struct {
	PlayerId int64  `json:"player_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func (j *JWT) NewPlayerClaims(playerId int64, username string) *PlayerClaims {
	now := time.Now()
	return &PlayerClaims{
		PlayerId: playerId,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenLifetime)),
		},
	}
}

func (j *JWT) Sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(j.signingMethod, claims).SignedString(j.privateKey)
}

func (j *JWT) ParsePlayerClaims(tokenString string) (*PlayerClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&PlayerClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return j.publicKey, nil
		},
		jwt.WithValidMethods([]string{j.signingMethod.Alg()}),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*PlayerClaims)
	if !ok {
		return nil, fmt.Errorf("malformed claims")
	}
	return claims, nil
}
