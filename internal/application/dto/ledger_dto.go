package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bodega-ledger/internal/domain/entity"
)

// ProductDoc fila de la colección products: registro de ubicación con los campos del catálogo embebidos.
// Es el formato del respaldo JSON y del servicio remoto.
type ProductDoc struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	EAN         string          `json:"ean,omitempty"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
	MinQuantity decimal.Decimal `json:"minQuantity"`
	Address     entity.Address  `json:"address"`
	Supplier    string          `json:"supplier"`
	Version     int64           `json:"version"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt,omitempty"`
}

// NewProductDoc desnormaliza un registro con su entrada de catálogo (entry puede ser nil).
func NewProductDoc(rec *entity.LocationRecord, entry *entity.CatalogEntry) ProductDoc {
	d := ProductDoc{
		ID:          rec.ID,
		Code:        rec.Code,
		Quantity:    rec.Quantity,
		MinQuantity: entry.EffectiveMin(),
		Address:     rec.Address,
		Version:     rec.Version,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
	if entry != nil {
		d.EAN = entry.EAN
		d.Name = entry.Name
		d.Category = entry.Category
		d.Description = entry.Description
		d.Unit = entry.Unit
		d.Supplier = entry.Supplier
	}
	return d
}

// Record extrae el LocationRecord del documento.
func (d ProductDoc) Record() *entity.LocationRecord {
	version := d.Version
	if version <= 0 {
		version = 1
	}
	updated := d.UpdatedAt
	if updated.IsZero() {
		updated = d.CreatedAt
	}
	return &entity.LocationRecord{
		ID:        d.ID,
		Code:      entity.NormalizeCode(d.Code),
		Quantity:  d.Quantity,
		Address:   d.Address.Normalize(),
		Version:   version,
		CreatedAt: d.CreatedAt,
		UpdatedAt: updated,
	}
}

// Entry extrae la entrada de catálogo del documento.
func (d ProductDoc) Entry() *entity.CatalogEntry {
	return &entity.CatalogEntry{
		Code:        entity.NormalizeCode(d.Code),
		Name:        d.Name,
		Category:    d.Category,
		Unit:        d.Unit,
		EAN:         d.EAN,
		Supplier:    d.Supplier,
		Description: d.Description,
		MinQuantity: d.MinQuantity,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// TransactionDoc fila de la colección transactions.
type TransactionDoc struct {
	ID          string          `json:"id"`
	TransferID  string          `json:"transferId,omitempty"`
	ProductID   string          `json:"productId"`
	Code        string          `json:"code,omitempty"`
	ProductName string          `json:"productName"`
	Type        string          `json:"type"`
	Quantity    decimal.Decimal `json:"quantity"`
	Date        time.Time       `json:"date"`
	Origin      string          `json:"origin"`
	Responsible string          `json:"responsible"`
	Observation string          `json:"observation"`
	Address     *entity.Address `json:"address,omitempty"`
}

// NewTransactionDoc convierte un movimiento al formato de intercambio.
func NewTransactionDoc(m *entity.Movement) TransactionDoc {
	addr := m.Address
	return TransactionDoc{
		ID:          m.ID,
		TransferID:  m.TransferID,
		ProductID:   m.ProductID,
		Code:        m.Code,
		ProductName: m.ProductName,
		Type:        m.Type,
		Quantity:    m.Quantity,
		Date:        m.Date,
		Origin:      m.Origin,
		Responsible: m.Responsible,
		Observation: m.Observation,
		Address:     &addr,
	}
}

// Movement reconstruye el movimiento del documento.
func (d TransactionDoc) Movement() *entity.Movement {
	m := &entity.Movement{
		ID:          d.ID,
		TransferID:  d.TransferID,
		ProductID:   d.ProductID,
		Code:        entity.NormalizeCode(d.Code),
		ProductName: d.ProductName,
		Type:        d.Type,
		Quantity:    d.Quantity,
		Date:        d.Date,
		Origin:      d.Origin,
		Responsible: d.Responsible,
		Observation: d.Observation,
	}
	if d.Address != nil {
		m.Address = d.Address.Normalize()
	}
	return m
}

// ProductCodes resuelve el SKU de un movimiento antiguo que solo trae productId. Los respaldos
// viejos guardaban a veces el código en ese campo, así que también se indexa por código.
type ProductCodes map[string]string

// NewProductCodes indexa las filas de products por id y por código.
func NewProductCodes(docs []ProductDoc) ProductCodes {
	pc := make(ProductCodes, 2*len(docs))
	for _, d := range docs {
		code := entity.NormalizeCode(d.Code)
		if code == "" {
			continue
		}
		if _, ok := pc[code]; !ok {
			pc[code] = code
		}
	}
	for _, d := range docs {
		if code := entity.NormalizeCode(d.Code); d.ID != "" && code != "" {
			pc[d.ID] = code
		}
	}
	return pc
}

// Fill completa m.Code a partir de m.ProductID. Devuelve false si sigue sin código.
func (pc ProductCodes) Fill(m *entity.Movement) bool {
	if m.Code != "" {
		return true
	}
	if code, ok := pc[m.ProductID]; ok {
		m.Code = code
		return true
	}
	return false
}

// UserDoc fila de la colección users; nunca lleva el hash de la contraseña.
type UserDoc struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Role        string                 `json:"role"`
	Preferences entity.UserPreferences `json:"preferences"`
}

// NewUserDoc convierte un usuario al formato de intercambio.
func NewUserDoc(u *entity.User) UserDoc {
	return UserDoc{ID: u.ID, Name: u.Name, Role: u.Role, Preferences: u.Preferences}
}

// ReferenceDoc fila de las colecciones categories y units.
type ReferenceDoc struct {
	Name string `json:"name"`
}

// SnapshotVersion versión del formato de respaldo.
const SnapshotVersion = "1.0"

// Snapshot documento de respaldo completo.
type Snapshot struct {
	Products     []ProductDoc     `json:"products"`
	Transactions []TransactionDoc `json:"transactions"`
	Users        []UserDoc        `json:"users"`
	Categories   []string         `json:"categories"`
	Units        []string         `json:"units"`
	Timestamp    int64            `json:"timestamp"` // milisegundos Unix
	V            string           `json:"v"`
}
