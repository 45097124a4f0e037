package exchange

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jhoicas/bodega-ledger/internal/application/dto"
	"github.com/jhoicas/bodega-ledger/internal/domain"
)

// BundlePrefix prefijo del paquete de sincronización escaneable.
const BundlePrefix = "LOGIMAP-360-SYNC:"

// EncodeBundle serializa el snapshot como prefijo + base64(JSON UTF-8).
// Si el resultado supera maxChars devuelve ErrBundleTooLarge; maxChars <= 0 no limita.
func EncodeBundle(snap dto.Snapshot, maxChars int) (string, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("serializar snapshot: %w", err)
	}
	out := BundlePrefix + base64.StdEncoding.EncodeToString(raw)
	if maxChars > 0 && len(out) > maxChars {
		return "", domain.ErrBundleTooLarge
	}
	return out, nil
}

// DecodeBundle invierte EncodeBundle.
func DecodeBundle(text string) (dto.Snapshot, error) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, BundlePrefix) {
		return dto.Snapshot{}, domain.ErrInvalidBundle
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(text, BundlePrefix))
	if err != nil {
		return dto.Snapshot{}, fmt.Errorf("%w: %v", domain.ErrInvalidBundle, err)
	}
	var snap dto.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return dto.Snapshot{}, fmt.Errorf("%w: %v", domain.ErrInvalidBundle, err)
	}
	return snap, nil
}
