// Package ticket issues and verifies the signed check-in credentials encoded
// into guest QR passes. A ticket is a bearer credential: possession is enough
// to attempt a check-in. Single use is enforced by the visit state machine,
// not here.
package ticket

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidTicket is returned for every verification failure. Callers must
// not be able to tell a forged signature from an expired or malformed ticket.
var ErrInvalidTicket = errors.New("invalid ticket")

// DefaultTTL is the absolute lifetime of an issued ticket.
const DefaultTTL = 24 * time.Hour

// TicketClaims is the payload bound into a ticket
type TicketClaims struct {
	VisitID    uuid.UUID `json:"visit_id"`
	GuestName  string    `json:"guest_name"`
	FlatNumber string    `json:"flat_number"`
	IssuedAt   time.Time `json:"-"`
	jwt.RegisteredClaims
}

// Codec signs and verifies tickets with a process-wide secret
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec creates a ticket codec. A zero ttl falls back to DefaultTTL.
func NewCodec(secret string, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Codec{secret: []byte(secret), ttl: ttl}
}

// Issue produces an opaque signed ticket binding a visit to its guest and
// destination flat, valid for the codec's TTL.
func (c *Codec) Issue(visitID uuid.UUID, guestName, flatNumber string) (string, error) {
	now := time.Now()
	claims := &TicketClaims{
		VisitID:    visitID,
		GuestName:  guestName,
		FlatNumber: flatNumber,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify parses a ticket and returns its claims. Any failure, signature,
// expiry or shape, collapses into ErrInvalidTicket.
func (c *Codec) Verify(ticket string) (*TicketClaims, error) {
	token, err := jwt.ParseWithClaims(ticket, &TicketClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidTicket
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidTicket
	}

	claims, ok := token.Claims.(*TicketClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidTicket
	}
	if claims.RegisteredClaims.IssuedAt != nil {
		claims.IssuedAt = claims.RegisteredClaims.IssuedAt.Time
	}

	return claims, nil
}
