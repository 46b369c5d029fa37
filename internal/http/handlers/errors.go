package handlers

import (
	"errors"
	"net/http"
	"strings"

	"lookbook/internal/domain"
	"lookbook/internal/middleware"
)

type errorResponse struct {
	Error string      `json:"error"`
	Code  domain.Kind `json:"code"`
}

var kindStatus = map[domain.Kind]int{
	domain.KindBadRequest:      http.StatusBadRequest,
	domain.KindRateLimited:     http.StatusTooManyRequests,
	domain.KindPaymentRequired: http.StatusPaymentRequired,
	domain.KindNotFound:        http.StatusNotFound,
	domain.KindProvider:        http.StatusInternalServerError,
	domain.KindNoImage:         http.StatusInternalServerError,
	domain.KindUnhandled:       http.StatusInternalServerError,
}

var kindMessages = map[string]map[domain.Kind]string{
	"en": {
		domain.KindBadRequest:      "Invalid request",
		domain.KindRateLimited:     "Rate limit exceeded. Please try again later.",
		domain.KindPaymentRequired: "Payment required. Please add credits to your workspace.",
		domain.KindNotFound:        "Creation not found.",
		domain.KindProvider:        "Image generation failed. Please try again.",
		domain.KindNoImage:         "No image was generated. Please try again.",
		domain.KindUnhandled:       "Internal server error.",
	},
	"pt": {
		domain.KindBadRequest:      "Requisição inválida",
		domain.KindRateLimited:     "Limite de requisições excedido. Tente novamente mais tarde.",
		domain.KindPaymentRequired: "Pagamento necessário. Adicione créditos ao seu workspace.",
		domain.KindNotFound:        "Criação não encontrada.",
		domain.KindProvider:        "Falha ao gerar a imagem. Tente novamente.",
		domain.KindNoImage:         "Nenhuma imagem foi gerada. Tente novamente.",
		domain.KindUnhandled:       "Erro interno do servidor.",
	},
}

// error translates err into a status code and a localized message. It is
// the only place kinds become HTTP statuses.
func (a *App) error(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		kind, status = domain.KindUnhandled, http.StatusInternalServerError
	}
	locale := middleware.LocaleFromContext(r.Context())
	messages, ok := kindMessages[locale]
	if !ok {
		messages = kindMessages["en"]
	}
	msg := messages[kind]
	if kind == domain.KindBadRequest {
		if detail := badRequestDetail(err); detail != "" {
			msg += ": " + detail
		}
	}

	log := a.log(r.Context())
	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).
		Str("path", r.URL.Path).
		Str("kind", string(kind)).
		Int("status", status).
		Msg("request failed")

	a.json(w, status, errorResponse{Error: msg, Code: kind})
}

func badRequestDetail(err error) string {
	if !errors.Is(err, domain.ErrBadRequest) {
		return ""
	}
	prefix := domain.ErrBadRequest.Error() + ": "
	msg := err.Error()
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return ""
}
