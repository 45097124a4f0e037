package inventory

import (
	"fmt"
	"regexp"

	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
)

const labelBrand = "LOGIMAP 360"

var labelCodeRe = regexp.MustCompile(`SKU: ([\w\-]+)`)

// LabelPayload texto de una línea que se embebe en el QR de la etiqueta de un bin.
func LabelPayload(rec *entity.LocationRecord, entry *entity.CatalogEntry) string {
	name := ""
	if entry != nil {
		name = entry.Name
	}
	return fmt.Sprintf("%s | SKU: %s | ITEM: %s | END: %s", labelBrand, rec.Code, name, rec.Address.Short())
}

// ParseLabelCode extrae el SKU de un texto escaneado. Si no hay patrón "SKU: ", ok es false.
func ParseLabelCode(scanned string) (code string, ok bool) {
	m := labelCodeRe.FindStringSubmatch(scanned)
	if m == nil {
		return "", false
	}
	return m[1], true
}
