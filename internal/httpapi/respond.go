// This file maps store results and errors onto response bodies and status
// codes.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/typekeep/typekeep/pkg/types"
)

const statusSuccess = "success"

// errorBody is the standard failure response. Type and ObjectID name the
// missing resource on not-found failures.
type errorBody struct {
	Error    string `json:"error"`
	Type     string `json:"type,omitempty"`
	ObjectID int64  `json:"object_id,omitempty"`
}

// validationBody reports the first payload violation on object creation.
// Path is present even when the violation is at the document root.
type validationBody struct {
	Error   string `json:"error"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps a store error onto its status code and body. Storage
// errors surface only the operation description, never the driver message.
func writeError(w http.ResponseWriter, err error) {
	var nferr *types.NotFoundError
	if errors.As(err, &nferr) {
		body := errorBody{Type: nferr.TypeID}
		if nferr.ObjectID != 0 {
			body.Error = fmt.Sprintf("Object %d not found in type '%s'", nferr.ObjectID, nferr.TypeID)
			body.ObjectID = nferr.ObjectID
		} else {
			body.Error = fmt.Sprintf("Type '%s' not found", nferr.TypeID)
		}
		writeJSON(w, http.StatusNotFound, body)
		return
	}

	var cerr *types.ConflictError
	if errors.As(err, &cerr) {
		writeJSON(w, http.StatusConflict, errorBody{
			Error: fmt.Sprintf("Type '%s' already exists", cerr.TypeID),
		})
		return
	}

	var verr *types.ValidationError
	if errors.As(err, &verr) {
		msg := verr.Error()
		if len(verr.Missing) > 0 {
			msg = "Type schema must include properties: " + strings.Join(verr.Missing, ", ")
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
		return
	}

	if types.IsSchema(err) || types.IsCorrupt(err) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	var serr *types.StorageError
	if errors.As(err, &serr) {
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error: "Database error: " + serr.Op,
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal error"})
}

// decodeBody decodes a JSON request body into a mapping, preserving integer
// fidelity with json.Number.
func decodeBody(r *http.Request) (map[string]any, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}
