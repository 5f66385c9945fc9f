// Package auth issues and validates participant share-link tokens.
// A share link is the only credential a reviewer ever holds: the emailed
// URL embeds a signed token scoping the bearer to one participant row of
// one approval request.
package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "adproof"

// ShareLink identifies the participant a validated token belongs to.
type ShareLink struct {
	RequestID     uuid.UUID
	ParticipantID uuid.UUID
	Email         string
}

// ShareLinkManager signs and validates share-link tokens with HS256.
type ShareLinkManager struct {
	secret  []byte
	linkTTL time.Duration
}

// NewShareLinkManager creates a share-link manager.
// secret must be at least 32 characters for HS256 security.
func NewShareLinkManager(secret string, linkTTL time.Duration) *ShareLinkManager {
	return &ShareLinkManager{
		secret:  []byte(secret),
		linkTTL: linkTTL,
	}
}

// shareLinkClaims extends standard JWT claims with the request and
// participant the link is scoped to.
type shareLinkClaims struct {
	jwt.RegisteredClaims
	RequestID     string `json:"rid"`
	ParticipantID string `json:"pid"`
}

// Mint creates a signed token for one participant of one request. The
// participant's email is the subject claim.
func (m *ShareLinkManager) Mint(link ShareLink) (string, error) {
	now := time.Now()
	claims := shareLinkClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strings.ToLower(link.Email),
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.linkTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		RequestID:     link.RequestID.String(),
		ParticipantID: link.ParticipantID.String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign share link: %w", err)
	}

	return signed, nil
}

// Validate parses a share-link token and returns the participant identity
// it carries.
func (m *ShareLinkManager) Validate(tokenString string) (ShareLink, error) {
	if tokenString == "" {
		return ShareLink{}, fmt.Errorf("token is empty")
	}

	token, err := jwt.ParseWithClaims(tokenString, &shareLinkClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return ShareLink{}, fmt.Errorf("parse share link: %w", err)
	}

	claims, ok := token.Claims.(*shareLinkClaims)
	if !ok || !token.Valid {
		return ShareLink{}, fmt.Errorf("invalid share link claims")
	}

	if claims.Issuer != issuer {
		return ShareLink{}, fmt.Errorf("invalid issuer: expected %s, got %s", issuer, claims.Issuer)
	}

	requestID, err := uuid.Parse(claims.RequestID)
	if err != nil {
		return ShareLink{}, fmt.Errorf("invalid request id claim: %w", err)
	}
	participantID, err := uuid.Parse(claims.ParticipantID)
	if err != nil {
		return ShareLink{}, fmt.Errorf("invalid participant id claim: %w", err)
	}

	return ShareLink{
		RequestID:     requestID,
		ParticipantID: participantID,
		Email:         claims.Subject,
	}, nil
}
