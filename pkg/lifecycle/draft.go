package lifecycle

import (
	"fmt"
	"strings"

	"procurement/pkg/api"

	"github.com/go-playground/validator/v10"
)

// Draft is the content of the request entry form.
type Draft struct {
	CategoryID    string `validate:"required"`
	Quantity      int    `validate:"min=1"`
	Justification string `validate:"min=10"`
}

var validate = validator.New()

// DraftError describes the first invalid field of a draft.
type DraftError struct {
	Field   string
	Message string
}

func (e *DraftError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the draft the way the entry form does, before anything is sent.
func (d Draft) Validate() error {
	d.Justification = strings.TrimSpace(d.Justification)
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Field() {
	case "CategoryID":
		return &DraftError{Field: "idCategoria", Message: "Seleziona una categoria"}
	case "Quantity":
		return &DraftError{Field: "quantita", Message: "La quantità deve essere almeno 1"}
	case "Justification":
		return &DraftError{
			Field:   "motivazione",
			Message: fmt.Sprintf("La motivazione deve contenere almeno %d caratteri", api.MinJustificationLength),
		}
	}
	return &DraftError{Field: fe.Field(), Message: fe.Error()}
}

// FromRequest fills a draft from an existing request, for the edit form.
func FromRequest(r api.PurchaseRequest) Draft {
	return Draft{CategoryID: r.CategoryID, Quantity: r.Quantity, Justification: r.Justification}
}
