// Package remote habla con el servicio de persistencia multi-colección (API REST estilo PostgREST)
// que replica el estado del almacén.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jhoicas/bodega-ledger/internal/domain"
)

// ErrRejected el servicio rechazó la petición (4xx distinto de 409 y 429); reintentar no sirve.
var ErrRejected = fmt.Errorf("remoto: petición rechazada: %w", domain.ErrInvalidInput)

const maxBody = 4 << 20

// Client cliente HTTP del servicio remoto. Las colecciones son tablas bajo {base}/rest/v1/.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient baseURL sin barra final.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) endpoint(collection string, query url.Values) string {
	u := c.baseURL + "/rest/v1/" + collection
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do ejecuta la petición y devuelve el cuerpo. Los errores de transporte y 5xx se pueden reintentar.
func (c *Client) do(ctx context.Context, method, target string, body []byte, prefer string) ([]byte, int, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return nil, 0, fmt.Errorf("remoto: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, fmt.Errorf("remoto: timeout o cancelación: %w", ctx.Err())
		}
		return nil, 0, fmt.Errorf("remoto: %s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("remoto: leer respuesta: %w", err)
	}
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return raw, resp.StatusCode, nil
	case resp.StatusCode == http.StatusConflict:
		return raw, resp.StatusCode, fmt.Errorf("remoto: HTTP 409: %w", domain.ErrDuplicate)
	case resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests:
		return raw, resp.StatusCode, fmt.Errorf("%w: HTTP %d: %s", ErrRejected, resp.StatusCode, truncate(raw))
	default:
		return raw, resp.StatusCode, fmt.Errorf("remoto: HTTP %d: %s", resp.StatusCode, truncate(raw))
	}
}

func truncate(b []byte) string {
	if len(b) > 200 {
		return string(b[:200]) + "..."
	}
	return string(b)
}

// Fetch descarga todas las filas de una colección.
func (c *Client) Fetch(ctx context.Context, collection string) ([]json.RawMessage, error) {
	raw, _, err := c.do(ctx, http.MethodGet, c.endpoint(collection, url.Values{"select": {"*"}}), nil, "")
	if err != nil {
		return nil, err
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("remoto: decodificar %s: %w", collection, err)
	}
	return rows, nil
}

// Upsert inserta o reemplaza por clave primaria; repetirlo es idempotente.
func (c *Client) Upsert(ctx context.Context, collection string, payload json.RawMessage) error {
	_, _, err := c.do(ctx, http.MethodPost, c.endpoint(collection, nil), payload,
		"resolution=merge-duplicates,return=minimal")
	return err
}

// UpsertVersioned escribe una fila con compare-and-swap sobre version: solo aplica si la versión
// remota es version-1. Si ninguna fila cambia se relee: misma versión = ya aplicado (nil);
// fila ausente = se inserta; cualquier otra versión = ErrVersionConflict, sin sobrescribir.
func (c *Client) UpsertVersioned(ctx context.Context, collection, id string, version int64, payload json.RawMessage) error {
	q := url.Values{
		"id":      {"eq." + id},
		"version": {"eq." + strconv.FormatInt(version-1, 10)},
	}
	raw, _, err := c.do(ctx, http.MethodPatch, c.endpoint(collection, q), payload, "return=representation")
	if err != nil {
		return err
	}
	if n, err := countRows(raw); err != nil {
		return err
	} else if n > 0 {
		return nil
	}

	current, found, err := c.version(ctx, collection, id)
	if err != nil {
		return err
	}
	switch {
	case !found:
		_, _, err := c.do(ctx, http.MethodPost, c.endpoint(collection, nil), payload, "return=minimal")
		if errors.Is(err, domain.ErrDuplicate) {
			// otra escritura la creó entre la lectura y el insert
			return fmt.Errorf("remoto: %s/%s: %w", collection, id, domain.ErrVersionConflict)
		}
		return err
	case current == version:
		return nil
	default:
		return fmt.Errorf("remoto: %s/%s versión remota %d, local %d: %w",
			collection, id, current, version, domain.ErrVersionConflict)
	}
}

func (c *Client) version(ctx context.Context, collection, id string) (int64, bool, error) {
	q := url.Values{"id": {"eq." + id}, "select": {"version"}}
	raw, _, err := c.do(ctx, http.MethodGet, c.endpoint(collection, q), nil, "")
	if err != nil {
		return 0, false, err
	}
	var rows []struct {
		Version int64 `json:"version"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return 0, false, fmt.Errorf("remoto: decodificar versión: %w", err)
	}
	if len(rows) == 0 {
		return 0, false, nil
	}
	return rows[0].Version, true, nil
}

func countRows(raw []byte) (int, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return 0, nil
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return 0, fmt.Errorf("remoto: decodificar respuesta: %w", err)
	}
	return len(rows), nil
}

// Delete elimina una fila por clave. La clave de categories y units es name.
func (c *Client) Delete(ctx context.Context, collection, key string) error {
	_, _, err := c.do(ctx, http.MethodDelete, c.endpoint(collection, url.Values{keyColumn(collection): {"eq." + key}}), nil, "")
	return err
}

// Purge vacía la colección completa.
func (c *Client) Purge(ctx context.Context, collection string) error {
	_, _, err := c.do(ctx, http.MethodDelete, c.endpoint(collection, url.Values{keyColumn(collection): {"not.is.null"}}), nil, "")
	return err
}

func keyColumn(collection string) string {
	switch collection {
	case "categories", "units":
		return "name"
	}
	return "id"
}
