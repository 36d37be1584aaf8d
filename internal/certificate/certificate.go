// internal/certificate/certificate.go
//
// Signed completion certificates.
// A finished session's result (player, topic, score, percentage, grade) is
// sealed into an HS256 JWT. Anyone holding the token can verify it at
// /certificates/{token}; the QR code printed on a certificate encodes that
// verify link.

package certificate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	qr "github.com/skip2/go-qrcode"

	"github.com/jgalan247/Edexcel-GCSE/internal/catalog"
	"github.com/jgalan247/Edexcel-GCSE/internal/game"
)

const issuer = "gcse-revision"

var (
	// ErrNotFinished is returned when asked to certify a live session.
	ErrNotFinished = errors.New("session not finished")
	// ErrInvalidCertificate wraps every verification failure.
	ErrInvalidCertificate = errors.New("invalid certificate")
)

// Claims is the certificate body. ID is the session id.
type Claims struct {
	Player  string       `json:"player"`
	Mode    catalog.Mode `json:"mode"`
	Topic   string       `json:"topic"`
	Title   string       `json:"title"`
	Status  game.Status  `json:"status"`
	Score   int          `json:"score"`
	Total   int          `json:"total"`
	Percent int          `json:"percent"`
	Grade   string       `json:"grade"`
	Daily   string       `json:"daily,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies certificates.
type Issuer struct {
	secret  []byte
	expiry  time.Duration
	baseURL string
	now     func() time.Time
}

// NewIssuer returns an issuer; expiryDays <= 0 means certificates never expire.
func NewIssuer(secret string, expiryDays int, baseURL string) *Issuer {
	return &Issuer{
		secret:  []byte(secret),
		expiry:  time.Duration(expiryDays) * 24 * time.Hour,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// Issue signs a certificate for a complete or failed session.
func (i *Issuer) Issue(s game.Snapshot) (string, *Claims, error) {
	if !s.Status.Terminal() {
		return "", nil, ErrNotFinished
	}
	player := strings.TrimSpace(s.Player)
	if player == "" {
		player = "Anonymous Student"
	}
	now := i.now()
	c := &Claims{
		Player:  player,
		Mode:    s.Mode,
		Topic:   s.Topic,
		Title:   s.Title,
		Status:  s.Status,
		Score:   s.Score,
		Total:   s.Total,
		Percent: s.Percent,
		Grade:   s.Grade,
		Daily:   s.Daily,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       s.SessionID,
			Issuer:   issuer,
			Subject:  player,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if i.expiry > 0 {
		c.ExpiresAt = jwt.NewNumericDate(now.Add(i.expiry))
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
	if err != nil {
		return "", nil, err
	}
	return token, c, nil
}

// Verify checks the signature, issuer and expiry and returns the claims.
func (i *Issuer) Verify(token string) (*Claims, error) {
	var c Claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCertificate, err)
	}
	return &c, nil
}

// VerifyURL is the public link a certificate's QR code points at.
func (i *Issuer) VerifyURL(token string) string {
	return i.baseURL + "/certificates/" + token
}

// QR renders url as a 256px PNG.
func QR(url string) ([]byte, error) {
	return qr.Encode(url, qr.Medium, 256)
}
