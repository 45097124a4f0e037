// Package exchange agrupa la importación y exportación de datos del almacén:
// archivos delimitados, libro en CSV, respaldo JSON completo y paquete escaneable.
package exchange

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Separator separador de campos de los archivos de intercambio.
const Separator = ';'

const bom = "\uFEFF"

var (
	inventoryHeader  = []string{"SKU", "EAN", "Nome", "Categoria", "Quantidade", "Minimo", "Rua", "Bloco", "Nivel", "Posicao"}
	inventoryExample = []string{"181400010180003", "7891234567890", "Feltro Verde Bilhar", "10 MT", "98", "98", "8-A", "01", "04", "01"}
	catalogHeader    = []string{"SKU", "EAN", "Nome", "Categoria", "Unidade"}
	catalogExample   = []string{"181400010180003", "7891234567890", "Feltro Verde Bilhar", "10 MT", "un"}
)

// decoder elige la decodificación: UTF-8 (quitando el BOM) si el contenido es UTF-8 válido,
// Windows-1252 en caso contrario (planillas exportadas en Latin-1).
func decoder(raw []byte) transform.Transformer {
	if utf8.Valid(raw) {
		return unicode.UTF8BOM.NewDecoder()
	}
	return charmap.Windows1252.NewDecoder()
}

// ParseDelimited lee un archivo separado por ';', descarta la cabecera y las líneas vacías.
// No valida la cantidad de campos: eso lo decide el importador de cada tipo.
func ParseDelimited(r io.Reader) ([][]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("leer archivo: %w", err)
	}
	text, _, err := transform.Bytes(decoder(raw), raw)
	if err != nil {
		return nil, fmt.Errorf("decodificar archivo: %w", err)
	}

	cr := csv.NewReader(bytes.NewReader(text))
	cr.Comma = Separator
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var rows [][]string
	header := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("archivo delimitado: %w", err)
		}
		if blank(rec) {
			continue
		}
		if header {
			header = false
			continue
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// InventoryTemplate modelo de importación de inventario (BOM + cabecera + ejemplo).
func InventoryTemplate() []byte {
	return template(inventoryHeader, inventoryExample)
}

// CatalogTemplate modelo de importación del catálogo base.
func CatalogTemplate() []byte {
	return template(catalogHeader, catalogExample)
}

func template(rows ...[]string) []byte {
	var b strings.Builder
	b.WriteString(bom)
	for i, r := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.Join(r, string(Separator)))
	}
	return []byte(b.String())
}
