package server

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWT 相关配置
const (
	// Session 有效期：覆盖一整局（默认规则 1800 tick）再留出重连余量
	SessionTTL = 10 * time.Minute

	// Token 签名者
	tokenIssuer = "dungeonbot-server"
)

// ErrInvalidToken Token 无法通过校验
var ErrInvalidToken = errors.New("无效的会话 Token")

// Claims 座位凭证：持有者可以重新接管房间里的这个座位
type Claims struct {
	PlayerID int    `json:"player_id"`
	RoomID   string `json:"room_id"`
	jwt.RegisteredClaims
}

// getSigningKey 获取签名密钥
// 从环境变量 JWT_SECRET 读取，如果不存在则使用默认值
func getSigningKey() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dungeonbot-dev-secret-change-in-production"
	}
	return []byte(secret)
}

// GenerateSessionToken 生成座位 Token
func GenerateSessionToken(playerID int, roomID string) (string, error) {
	now := time.Now()
	claims := Claims{
		PlayerID: playerID,
		RoomID:   roomID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   fmt.Sprintf("%s/seat-%d", roomID, playerID),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(getSigningKey())
}

// VerifySessionToken 验证并解析 Token，返回玩家 ID 与房间 ID
func VerifySessionToken(tokenString string) (int, string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return getSigningKey(), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.RoomID == "" {
		return 0, "", ErrInvalidToken
	}
	return claims.PlayerID, claims.RoomID, nil
}
