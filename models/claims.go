package models

import (
	jwt "github.com/dgrijalva/jwt-go"
)

// ReconnectClaims は再接続チケットに含めるJWTクレームです。
type ReconnectClaims struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	jwt.StandardClaims
}
