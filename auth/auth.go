package auth

import (
	"errors"
	"fmt"
	"time"

	"doodleserver/models"

	jwt "github.com/dgrijalva/jwt-go"
)

var ErrInvalidTicket = errors.New("invalid reconnect ticket")

// Tickets は再接続チケット(JWT)の発行と検証を行います。
type Tickets struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewTickets(secret string, ttl time.Duration) *Tickets {
	return &Tickets{key: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a ticket that lets playerID rejoin roomID after a dropped
// connection.
func (t *Tickets) Issue(roomID, playerID string) (string, error) {
	now := t.now()
	claims := &models.ReconnectClaims{
		RoomID:   roomID,
		PlayerID: playerID,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(t.ttl).Unix(),
			Subject:   playerID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.key)
}

// Parse verifies the signature and expiry and returns the room and player.
func (t *Tickets) Parse(tokenString string) (string, string, error) {
	claims := &models.ReconnectClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.key, nil
	})
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidTicket, err)
	}
	if !token.Valid || claims.RoomID == "" || claims.PlayerID == "" {
		return "", "", ErrInvalidTicket
	}
	return claims.RoomID, claims.PlayerID, nil
}
