package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "simbooking/internal/errors"
)

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperrors.NewHTTPError(http.StatusRequestEntityTooLarge, apperrors.CodeInvalidInput, "Richiesta troppo grande")
		}
		if errors.Is(err, io.EOF) {
			return apperrors.ErrBadRequest(apperrors.CodeInvalidInput, "Corpo della richiesta mancante")
		}
		return apperrors.ErrBadRequest(apperrors.CodeInvalidInput, "JSON non valido")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	apperrors.WriteJSON(w, status, v)
}
