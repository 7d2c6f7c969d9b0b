package controller

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/research-marketplace/account-deletion-service/exception"
)

const maxBodySize = 1 << 20

func getStringParam(r *http.Request, p string) string {
	params := mux.Vars(r)
	return params[p]
}

func getRequiredStringParam(r *http.Request, p string) (string, *exception.CustomError) {
	value := strings.TrimSpace(getStringParam(r, p))
	if value == "" {
		return "", &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.EmptyParameter,
			Message: exception.EmptyParameterMsg,
			Params:  map[string]interface{}{"param": p},
		}
	}
	return value, nil
}

// decodeOptionalBody fills target from the request body. An empty body leaves target untouched.
func decodeOptionalBody(r *http.Request, target interface{}) *exception.CustomError {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.BadRequestBody,
			Message: exception.BadRequestBodyMsg,
			Debug:   err.Error(),
		}
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	if err = json.Unmarshal(body, target); err != nil {
		return &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.BadRequestBody,
			Message: exception.BadRequestBodyMsg,
			Debug:   err.Error(),
		}
	}
	return nil
}
