package product

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// FlexFloat unmarshals from either a JSON number or a numeric string.
// The admin UI posts form values as strings ("1.5"), API callers post
// plain numbers; both spellings are accepted everywhere.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if strings.HasPrefix(s, `"`) {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return errors.New("not a numeric string")
		}
		*f = FlexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

// FlexInt is the integer counterpart of FlexFloat.
type FlexInt int

func (i *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if strings.HasPrefix(s, `"`) {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return errors.New("not an integer string")
		}
		*i = FlexInt(v)
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*i = FlexInt(v)
	return nil
}

// CreateProductRequest is the POST /api/products payload.
type CreateProductRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Price       *FlexFloat `json:"price"`
	Currency    string     `json:"currency"`
	Stock       *FlexInt   `json:"stock"`
	Category    string     `json:"category"`
	Brand       string     `json:"brand"`
	Rating      *FlexFloat `json:"rating"`
}

// Validate checks the request shape before any store call is made.
func (r *CreateProductRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Description, validation.Required),
		// NotNil rather than Required: a zero price is a legitimate value,
		// only an absent field is rejected.
		validation.Field(&r.Price, validation.NotNil, validation.By(nonNegative)),
		validation.Field(&r.Stock, validation.By(nonNegative)),
		validation.Field(&r.Rating, validation.By(nonNegative)),
	)
	if err != nil {
		return &ValidationError{Reason: err.Error()}
	}
	return nil
}

// ToProduct builds the record to persist, filling in catalog defaults for
// omitted fields.
func (r *CreateProductRequest) ToProduct() *Product {
	p := &Product{
		Name:        r.Name,
		Description: r.Description,
		Price:       float64(*r.Price),
		Currency:    r.Currency,
		Category:    r.Category,
		Brand:       r.Brand,
	}
	if r.Stock != nil {
		p.Stock = int(*r.Stock)
	}
	if r.Rating != nil {
		p.Rating = float64(*r.Rating)
	}
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
	if p.Category == "" {
		p.Category = DefaultCategory
	}
	if p.Brand == "" {
		p.Brand = DefaultBrand
	}
	return p
}

// UpdateProductRequest is the PUT /api/products/:id payload. Every field is
// optional; only the fields present in the body are changed.
type UpdateProductRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Price       *FlexFloat `json:"price"`
	Currency    *string    `json:"currency"`
	Stock       *FlexInt   `json:"stock"`
	Category    *string    `json:"category"`
	Brand       *string    `json:"brand"`
	Rating      *FlexFloat `json:"rating"`
}

// Validate checks the provided fields; absent fields are not validated.
func (r *UpdateProductRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.NilOrNotEmpty),
		validation.Field(&r.Price, validation.By(nonNegative)),
		validation.Field(&r.Stock, validation.By(nonNegative)),
		validation.Field(&r.Rating, validation.By(nonNegative)),
	)
	if err != nil {
		return &ValidationError{Reason: err.Error()}
	}
	return nil
}

// ToUpdate converts the request into the sparse domain update.
func (r *UpdateProductRequest) ToUpdate() *Update {
	u := &Update{
		Name:        r.Name,
		Description: r.Description,
		Currency:    r.Currency,
		Category:    r.Category,
		Brand:       r.Brand,
	}
	if r.Price != nil {
		v := float64(*r.Price)
		u.Price = &v
	}
	if r.Stock != nil {
		v := int(*r.Stock)
		u.Stock = &v
	}
	if r.Rating != nil {
		v := float64(*r.Rating)
		u.Rating = &v
	}
	return u
}

// nonNegative rejects negative prices, stock counts and ratings. ozzo hands
// the rule the raw field value, so pointer fields arrive as pointers; a nil
// pointer means the field was omitted and is left to presence rules.
func nonNegative(value interface{}) error {
	switch v := value.(type) {
	case *FlexFloat:
		if v != nil && *v < 0 {
			return errors.New("must be zero or positive")
		}
	case *FlexInt:
		if v != nil && *v < 0 {
			return errors.New("must be zero or positive")
		}
	case FlexFloat:
		if v < 0 {
			return errors.New("must be zero or positive")
		}
	case FlexInt:
		if v < 0 {
			return errors.New("must be zero or positive")
		}
	}
	return nil
}
