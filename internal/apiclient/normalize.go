package apiclient

import (
	"github.com/araddon/dateparse"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/cashtill/tillgate/internal/domain"
)

// productPayload covers both historical "all products" response shapes. The
// rich shape carries stock and initial_stock; the legacy shape only id,
// name/title and price. Fields are interface{} where the backend has been
// seen emitting mixed number/string values.
type productPayload struct {
	ID           interface{} `mapstructure:"id"`
	Name         string      `mapstructure:"name"`
	Title        string      `mapstructure:"title"`
	Price        interface{} `mapstructure:"price"`
	Unit         string      `mapstructure:"unit"`
	CategoryID   interface{} `mapstructure:"category_id"`
	Stock        interface{} `mapstructure:"stock"`
	InitialStock interface{} `mapstructure:"initial_stock"`
	UpdatedAt    string      `mapstructure:"updated_at"`
}

type categoryPayload struct {
	ID   interface{} `mapstructure:"id"`
	Key  interface{} `mapstructure:"key"`
	Name string      `mapstructure:"name"`
}

func decodePayload(data interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(data)
}

// normalizeProducts unifies either product response shape into domain
// products. Missing or malformed fields are soft failures: price and stock
// default to zero, initial stock falls back to the fetched stock.
func normalizeProducts(data interface{}) ([]domain.Product, error) {
	if data == nil {
		return []domain.Product{}, nil
	}
	var rows []productPayload
	if err := decodePayload(data, &rows); err != nil {
		return nil, errors.Wrap(err, "decode products payload")
	}
	out := make([]domain.Product, 0, len(rows))
	for _, r := range rows {
		name := r.Name
		if name == "" {
			name = r.Title
		}
		stock := cast.ToInt(r.Stock)
		initial := stock
		if r.InitialStock != nil {
			initial = cast.ToInt(r.InitialStock)
		}
		p := domain.Product{
			ID:             domain.NormalizeID(r.ID),
			Name:           name,
			Price:          cast.ToFloat64(r.Price),
			Unit:           r.Unit,
			AvailableStock: stock,
			InitialStock:   initial,
		}
		if r.CategoryID != nil {
			p.CategoryID = domain.NormalizeID(r.CategoryID)
		}
		if r.UpdatedAt != "" {
			if ts, err := dateparse.ParseAny(r.UpdatedAt); err == nil {
				p.UpdatedAt = ts
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// normalizeCategories aliases key and id to the same normalized value, as
// the historical front-end consumed both field names.
func normalizeCategories(data interface{}) ([]domain.Category, error) {
	if data == nil {
		return []domain.Category{}, nil
	}
	var rows []categoryPayload
	if err := decodePayload(data, &rows); err != nil {
		return nil, errors.Wrap(err, "decode categories payload")
	}
	out := make([]domain.Category, 0, len(rows))
	for _, r := range rows {
		id := r.ID
		if id == nil {
			id = r.Key
		}
		nid := domain.NormalizeID(id)
		out = append(out, domain.Category{ID: nid, Key: nid, Name: r.Name})
	}
	return out, nil
}
