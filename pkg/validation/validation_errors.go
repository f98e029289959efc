package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to user-facing Portuguese labels
var FieldLabels = map[string]string{
	// Posting fields
	"Title":       "Título da vaga",
	"Description": "Descrição",
	"Kind":        "Tipo",
	"WorkMode":    "Modalidade",
	"Location":    "Localização",
	"SalaryMin":   "Salário mínimo",
	"SalaryMax":   "Salário máximo",
	"ResourceIDs": "Recursos de acessibilidade",

	// Evaluation fields
	"CategoryIDs": "Deficiências elegíveis",
	"Notes":       "Observações",
	"Adjustments": "Ajustes recomendados",
	"Outcome":     "Decisão",

	// Application fields
	"Message": "Mensagem",
	"Status":  "Status",
	"Rating":  "Avaliação",

	// Conversation fields
	"Body":          "Mensagem",
	"AttachmentURL": "Anexo",
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

// Message joins the formatted errors into a single sentence list.
func Message(err error) string {
	return strings.Join(FormatValidationErrors(err), "; ")
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s é obrigatório", label)
	case "not_blank":
		return fmt.Sprintf("%s não pode estar em branco", label)
	case "no_emoji":
		return fmt.Sprintf("%s não pode conter emojis", label)
	case "unique_ids":
		return fmt.Sprintf("%s contém itens repetidos", label)
	case "max":
		return fmt.Sprintf("%s deve ter no máximo %s", label, param)
	case "min":
		return fmt.Sprintf("%s deve ter no mínimo %s", label, param)
	case "gte":
		return fmt.Sprintf("%s deve ser maior ou igual a %s", label, param)
	case "lte":
		return fmt.Sprintf("%s deve ser menor ou igual a %s", label, param)
	case "oneof":
		return fmt.Sprintf("%s deve ser um de: %s", label, strings.ReplaceAll(param, " ", ", "))
	case "url":
		return fmt.Sprintf("%s deve ser uma URL válida", label)
	default:
		return fmt.Sprintf("%s é inválido", label)
	}
}

func getFieldLabel(field string) string {
	if label, ok := FieldLabels[field]; ok {
		return label
	}
	return field
}
