package domain

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/maysa/storefront/pkg/errors"
)

// ErrInvalidShareData is matched by every share token decode failure.
var ErrInvalidShareData = apperrors.ErrInvalidShareData

// MaxShareIDs bounds the number of ids a share token may carry.
const MaxShareIDs = 200

// ShareData is the content of a wishlist share token.
type ShareData struct {
	IDs       []string
	CreatedAt time.Time
}

type sharePayload struct {
	IDs       []string `json:"ids"`
	CreatedAt int64    `json:"created_at"`
}

// EncodeShareToken encodes ids and createdAt as unpadded base64url JSON.
// The token is a reversible encoding, not a signature: anyone can read or
// forge one.
func EncodeShareToken(ids []string, createdAt time.Time) (string, error) {
	if len(ids) == 0 {
		return "", apperrors.InvalidInput("cannot share an empty wishlist")
	}
	if len(ids) > MaxShareIDs {
		return "", apperrors.InvalidInput(fmt.Sprintf("a shared wishlist holds at most %d products", MaxShareIDs))
	}
	raw, err := json.Marshal(sharePayload{IDs: ids, CreatedAt: createdAt.UnixMilli()})
	if err != nil {
		return "", fmt.Errorf("marshal share payload: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodeShareToken reverses EncodeShareToken. Any malformed token yields an
// error matching ErrInvalidShareData; partial data is never returned.
func DecodeShareToken(token string) (ShareData, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return ShareData{}, apperrors.InvalidShareData(errors.New("empty token"))
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(token, "="))
	if err != nil {
		return ShareData{}, apperrors.InvalidShareData(fmt.Errorf("decode base64: %w", err))
	}

	var payload sharePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ShareData{}, apperrors.InvalidShareData(fmt.Errorf("decode json: %w", err))
	}
	if len(payload.IDs) == 0 {
		return ShareData{}, apperrors.InvalidShareData(errors.New("no product ids"))
	}
	if len(payload.IDs) > MaxShareIDs {
		return ShareData{}, apperrors.InvalidShareData(fmt.Errorf("%d product ids exceeds %d", len(payload.IDs), MaxShareIDs))
	}
	for i, id := range payload.IDs {
		if strings.TrimSpace(id) == "" {
			return ShareData{}, apperrors.InvalidShareData(fmt.Errorf("empty product id at %d", i))
		}
	}

	return ShareData{
		IDs:       payload.IDs,
		CreatedAt: time.UnixMilli(payload.CreatedAt).UTC(),
	}, nil
}

// ShareURL builds {origin}/wishlist/shared/{token}.
func ShareURL(origin, token string) string {
	return strings.TrimRight(origin, "/") + "/wishlist/shared/" + token
}
