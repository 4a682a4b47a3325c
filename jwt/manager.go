package jwt

import (
	"crypto/ed25519"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SigningMethod selects the token signature algorithm.
type SigningMethod string

const (
	// MethodEd25519 verifies EdDSA signatures (default).
	MethodEd25519 SigningMethod = "ed25519"
	// MethodHS256 verifies HMAC-SHA256 signatures.
	MethodHS256 SigningMethod = "hs256"
)

// DefaultPermissionsClaim is the claim name providers emit the raw
// permission payload under.
const DefaultPermissionsClaim = "perms"

// Config defines verification parameters for permission tokens.
//
// Config instances are intended to be configured during initialization
// and then treated as immutable.
type Config struct {
	SigningMethod    SigningMethod
	PrivateKey       []byte // required for hs256 and for Issue
	PublicKey        []byte // required for ed25519 verification
	Issuer           string
	Audience         string
	Leeway           time.Duration
	PermissionsClaim string // defaults to DefaultPermissionsClaim
	TokenTTL         time.Duration
}

// Manager verifies permission tokens and extracts the subject and raw
// permission payload. Safe for concurrent use.
type Manager struct {
	config Config
}

// Extraction is the verified content of one permission token. Raw keeps
// the claim value exactly as the provider encoded it; a token without the
// permissions claim yields a nil Raw, which normalizes to no grants.
type Extraction struct {
	SubjectID string
	Raw       any
	ExpiresAt time.Time
}

// NewManager validates cfg and builds a [Manager].
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.PermissionsClaim == "" {
		cfg.PermissionsClaim = DefaultPermissionsClaim
	}
	// A negative TTL mints already-expired tokens; useful in tests,
	// harmless otherwise since Extract rejects them.
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 15 * time.Minute
	}

	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.PrivateKey) == 0 {
			return nil, errors.New("hs256 requires private key")
		}
	case MethodEd25519, "":
		cfg.SigningMethod = MethodEd25519
		if len(cfg.PrivateKey) > 0 {
			if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
				return nil, err
			}
		}
		if len(cfg.PublicKey) == 0 {
			return nil, errors.New("ed25519 requires public key")
		}
		if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("unsupported signing method")
	}

	return &Manager{config: cfg}, nil
}

// Extract verifies tokenStr and returns the subject and raw permission
// payload. Any verification failure returns an error and no payload.
func (m *Manager) Extract(tokenStr string) (*Extraction, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.method().Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}
	if m.config.Audience != "" {
		options = append(options, jwt.WithAudience(m.config.Audience))
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return m.verifyKey()
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, errors.New("token missing subject")
	}

	out := &Extraction{
		SubjectID: subject,
		Raw:       claims[m.config.PermissionsClaim],
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

// Issue signs a token carrying the subject and raw permission payload.
// Intended for provider-side use and tests; verification-only deployments
// can omit the private key and never call it.
func (m *Manager) Issue(subjectID string, raw any) (string, error) {
	if subjectID == "" {
		return "", errors.New("subject id required")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subjectID,
		"iat": jwt.NewNumericDate(now),
		"exp": jwt.NewNumericDate(now.Add(m.config.TokenTTL)),
	}
	if m.config.Issuer != "" {
		claims["iss"] = m.config.Issuer
	}
	if m.config.Audience != "" {
		claims["aud"] = m.config.Audience
	}
	if raw != nil {
		claims[m.config.PermissionsClaim] = raw
	}

	signKey, err := m.signKey()
	if err != nil {
		return "", err
	}
	return jwt.NewWithClaims(m.method(), claims).SignedString(signKey)
}

func (m *Manager) method() jwt.SigningMethod {
	if m.config.SigningMethod == MethodHS256 {
		return jwt.SigningMethodHS256
	}
	return jwt.SigningMethodEdDSA
}

func (m *Manager) signKey() (interface{}, error) {
	if m.config.SigningMethod == MethodHS256 {
		return m.config.PrivateKey, nil
	}
	return parseEdPrivateKey(m.config.PrivateKey)
}

func (m *Manager) verifyKey() (interface{}, error) {
	if m.config.SigningMethod == MethodHS256 {
		return m.config.PrivateKey, nil
	}
	return parseEdPublicKey(m.config.PublicKey)
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
