package crypto

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/blake2b"

	"gitlab.com/appserver.net/internal/config"
	"gitlab.com/appserver.net/internal/core/ports/primary"
	"gitlab.com/appserver.net/internal/domain"
)

var _ primary.ToolSigner = (*ToolSignerImpl)(nil)

var (
	ErrMissingSecret = errors.New("signing secret is empty")
)

const signingMethod = "HS256"

type toolClaims struct {
	Kind       string `json:"kind"`
	Version    string `json:"ver,omitempty"`
	ConfigHash string `json:"cfg"`
	jwt.RegisteredClaims
}

// ToolSignerImpl signs descriptors with an HMAC JWT whose claims pin the descriptor content
type ToolSignerImpl struct {
	HMACSecretKey string
	now           func() time.Time
}

func NewToolSigner(signingConfig config.SigningConfig) (*ToolSignerImpl, error) {
	if signingConfig.Secret == "" {
		return nil, ErrMissingSecret
	}
	return &ToolSignerImpl{
		HMACSecretKey: signingConfig.Secret,
		now:           time.Now,
	}, nil
}

func (s *ToolSignerImpl) Sign(ctx context.Context, descriptor *domain.ToolDescriptor) (*domain.ToolDescriptor, error) {
	configHash, err := ConfigDigest(descriptor.Config)
	if err != nil {
		return nil, err
	}

	claims := toolClaims{
		Kind:       descriptor.Kind,
		Version:    descriptor.Version,
		ConfigHash: configHash,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  descriptor.ID,
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	}

	tok := jwt.NewWithClaims(jwt.GetSigningMethod(signingMethod), claims)
	signature, err := tok.SignedString([]byte(s.HMACSecretKey))
	if err != nil {
		return nil, fmt.Errorf("failed to sign tool %s: %w", descriptor.ID, err)
	}

	signed := *descriptor
	signed.Signature = signature
	return &signed, nil
}

func (s *ToolSignerImpl) Verify(ctx context.Context, descriptor *domain.ToolDescriptor) error {
	if descriptor.Signature == "" {
		return fmt.Errorf("%w: %s is unsigned", domain.ErrInvalidSignature, descriptor.ID)
	}

	var claims toolClaims
	_, err := jwt.ParseWithClaims(descriptor.Signature, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.HMACSecretKey), nil
	}, jwt.WithValidMethods([]string{signingMethod}))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidSignature, descriptor.ID, err)
	}

	configHash, err := ConfigDigest(descriptor.Config)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidSignature, descriptor.ID, err)
	}

	if claims.Subject != descriptor.ID ||
		claims.Kind != descriptor.Kind ||
		claims.Version != descriptor.Version ||
		claims.ConfigHash != configHash {
		return fmt.Errorf("%w: %s does not match its signature", domain.ErrInvalidSignature, descriptor.ID)
	}

	return nil
}

// ConfigDigest hashes the canonical JSON form of config, so whitespace and key order
// introduced by a store do not change it
func ConfigDigest(config json.RawMessage) (string, error) {
	canonical := []byte("null")
	if len(bytes.TrimSpace(config)) > 0 {
		var v interface{}
		dec := json.NewDecoder(bytes.NewReader(config))
		dec.UseNumber()
		if err := dec.Decode(&v); err != nil {
			return "", fmt.Errorf("invalid tool config: %w", err)
		}
		var err error
		if canonical, err = json.Marshal(v); err != nil {
			return "", fmt.Errorf("invalid tool config: %w", err)
		}
	}

	sum := blake2b.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
