package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/openalpha/prize-savings/api/types"
)

// PoolHandler serves pool, position and draw endpoints
type PoolHandler struct {
	service types.PoolService
}

// NewPoolHandler creates a new pool handler
func NewPoolHandler(service types.PoolService) *PoolHandler {
	return &PoolHandler{service: service}
}

// HandlePools handles GET /v1/pools
func (h *PoolHandler) HandlePools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	pools, err := h.service.GetPools()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pools": pools,
	})
}

// HandlePool handles /v1/pools/{id} and its sub-endpoints:
//
//	GET /v1/pools/{id}
//	GET /v1/pools/{id}/draws
//	GET /v1/pools/{id}/draw-status
//	GET /v1/pools/{id}/position/{address}
func (h *PoolHandler) HandlePool(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/v1/pools/")
	parts := strings.SplitN(path, "/", 3)

	poolID, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid pool ID")
		return
	}

	endpoint := ""
	if len(parts) > 1 {
		endpoint = parts[1]
	}

	switch endpoint {
	case "":
		pool, err := h.service.GetPool(poolID)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, pool)

	case "draws":
		limit := 20
		if l := r.URL.Query().Get("limit"); l != "" {
			if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
				limit = parsed
			}
		}
		draws, err := h.service.GetDraws(poolID, limit)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"draws": draws,
		})

	case "draw-status":
		status, err := h.service.GetDrawStatus(poolID)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, status)

	case "position":
		if len(parts) < 3 || parts[2] == "" {
			writeError(w, http.StatusBadRequest, "Address required")
			return
		}
		position, err := h.service.GetPosition(poolID, parts[2])
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, position)

	default:
		writeError(w, http.StatusNotFound, "Endpoint not found")
	}
}

// HandleUserPools handles GET /v1/users/{address}/pools
func (h *PoolHandler) HandleUserPools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/v1/users/")
	address := strings.TrimSuffix(path, "/pools")
	if address == "" || address == path {
		writeError(w, http.StatusBadRequest, "Address required")
		return
	}

	poolIDs, err := h.service.GetUserPools(address)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"address": address,
		"pools":   poolIDs,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": message,
	})
}
