package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"files-manager-api/internal/domain/file"
	"files-manager-api/internal/domain/user"
)

var (
	ErrInvalidToken = errors.New("invalid job token")
	ErrMissingField = errors.New("job token misses fileId or userId")
)

// Service signs derivation jobs so the worker only acts on payloads
// produced by this deployment.
type Service struct {
	secret []byte
	now    func() time.Time
}

func New(secret string) *Service { return &Service{secret: []byte(secret), now: time.Now} }

type Claims struct {
	FileID string `json:"fileId"`
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

func (s *Service) SignJob(job file.Job) (string, error) {
	claims := Claims{
		FileID: strconv.FormatInt(int64(job.FileID), 10),
		UserID: strconv.FormatInt(int64(job.UserID), 10),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(s.secret)
}

func (s *Service) ParseJob(tokenStr string) (file.Job, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return file.Job{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return file.Job{}, ErrInvalidToken
	}

	fileID, err := strconv.ParseInt(claims.FileID, 10, 64)
	if err != nil || fileID <= 0 {
		return file.Job{}, fmt.Errorf("%w: fileId %q", ErrMissingField, claims.FileID)
	}
	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil || userID <= 0 {
		return file.Job{}, fmt.Errorf("%w: userId %q", ErrMissingField, claims.UserID)
	}

	return file.Job{FileID: file.ID(fileID), UserID: user.ID(userID)}, nil
}
