// This file implements the route handlers.
package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/typekeep/typekeep/pkg/types"
)

type registerTypeResponse struct {
	Status    string `json:"status"`
	TypeID    string `json:"type_id"`
	TableName string `json:"table_name"`
	Message   string `json:"message"`
}

type listTypesResponse struct {
	Status string                 `json:"status"`
	Types  []types.TypeDescriptor `json:"types"`
}

type getTypeResponse struct {
	Status string                `json:"status"`
	Type   *types.TypeDescriptor `json:"type"`
}

type deleteTypeResponse struct {
	Status  string `json:"status"`
	TypeID  string `json:"type_id"`
	Message string `json:"message"`
}

type createObjectResponse struct {
	Status   string `json:"status"`
	TypeID   string `json:"type_id"`
	ObjectID int64  `json:"object_id"`
	Message  string `json:"message"`
}

type listObjectsResponse struct {
	Status  string         `json:"status"`
	TypeID  string         `json:"type_id"`
	Objects []types.Record `json:"objects"`
}

type getObjectResponse struct {
	Status   string       `json:"status"`
	TypeID   string       `json:"type_id"`
	ObjectID int64        `json:"object_id"`
	Data     types.Record `json:"data"`
}

type deleteObjectResponse struct {
	Status   string `json:"status"`
	TypeID   string `json:"type_id"`
	ObjectID int64  `json:"object_id"`
	Message  string `json:"message"`
}

func (s *Server) handleRegisterType(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeBody(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Request body is not valid JSON"})
		return
	}
	if len(doc) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "No JSON type schema provided"})
		return
	}

	desc, err := s.store.RegisterType(doc)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, registerTypeResponse{
		Status:    statusSuccess,
		TypeID:    desc.TypeID,
		TableName: desc.TableName,
		Message:   fmt.Sprintf("Type '%s' stored and table created", desc.TypeID),
	})
}

func (s *Server) handleListTypes(w http.ResponseWriter, r *http.Request) {
	listed, err := s.store.ListTypes()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listTypesResponse{Status: statusSuccess, Types: listed})
}

func (s *Server) handleGetType(w http.ResponseWriter, r *http.Request) {
	typeID := r.PathValue("type_id")

	desc, err := s.store.GetType(typeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, getTypeResponse{Status: statusSuccess, Type: desc})
}

func (s *Server) handleDeleteType(w http.ResponseWriter, r *http.Request) {
	typeID := r.PathValue("type_id")

	if err := s.store.DeleteType(typeID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteTypeResponse{
		Status:  statusSuccess,
		TypeID:  typeID,
		Message: fmt.Sprintf("Type '%s' and its objects deleted successfully", typeID),
	})
}

func (s *Server) handleCreateObject(w http.ResponseWriter, r *http.Request) {
	typeID := r.PathValue("type_id")

	payload, err := decodeBody(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Request body is not valid JSON"})
		return
	}
	if len(payload) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "No JSON data provided"})
		return
	}

	objectID, err := s.store.CreateObject(typeID, payload)
	if err != nil {
		var verr *types.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, validationBody{
				Error:   "Validation failed",
				Path:    verr.Path,
				Message: verr.Message,
			})
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, createObjectResponse{
		Status:   statusSuccess,
		TypeID:   typeID,
		ObjectID: objectID,
		Message:  "Object inserted successfully",
	})
}

func (s *Server) handleListObjects(w http.ResponseWriter, r *http.Request) {
	typeID := r.PathValue("type_id")

	page := types.DefaultPage()
	query := r.URL.Query()
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "Limit must be a non-negative integer"})
			return
		}
		page.Limit = n
	}
	if raw := query.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "Offset must be a non-negative integer"})
			return
		}
		page.Offset = n
	}

	records, err := s.store.ListObjects(typeID, page)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listObjectsResponse{
		Status:  statusSuccess,
		TypeID:  typeID,
		Objects: records,
	})
}

func (s *Server) handleGetObject(w http.ResponseWriter, r *http.Request) {
	typeID := r.PathValue("type_id")
	objectID, ok := parseObjectID(w, r)
	if !ok {
		return
	}

	record, err := s.store.GetObject(typeID, objectID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, getObjectResponse{
		Status:   statusSuccess,
		TypeID:   typeID,
		ObjectID: objectID,
		Data:     record,
	})
}

func (s *Server) handleDeleteObject(w http.ResponseWriter, r *http.Request) {
	typeID := r.PathValue("type_id")
	objectID, ok := parseObjectID(w, r)
	if !ok {
		return
	}

	if err := s.store.DeleteObject(typeID, objectID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, deleteObjectResponse{
		Status:   statusSuccess,
		TypeID:   typeID,
		ObjectID: objectID,
		Message:  "Object deleted successfully",
	})
}

// parseObjectID reads the object_id path segment. A non-integer segment is
// an unmatched route, not a bad request.
func parseObjectID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("object_id")
	objectID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Not found"})
		return 0, false
	}
	return objectID, true
}
