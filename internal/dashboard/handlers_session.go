package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/joao-cbj/silowatch/internal/gateway"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"senha"`
	MFACode  string `json:"mfaCode,omitempty"`
}

// Login authenticates against the gateway through the session store. A
// requiresMFA answer is passed back as a normal response so the caller can
// re-submit with a code.
func (h *Handlers) Login(w http.ResponseWriter, req *http.Request) {
	var body loginRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}
	if body.Email == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "email e senha são obrigatórios")
		return
	}

	result, err := h.controller.session.Login(req.Context(), body.Email, body.Password, body.MFACode)
	if err != nil {
		h.controller.logger.Warnf("login failed for %s: %v", body.Email, err)
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	if result.RequiresMFA {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":     true,
			"requiresMFA": true,
			"message":     result.Message,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"usuario": result.User,
	})
}

// GetSession reports whether a verified session is active, and for whom.
func (h *Handlers) GetSession(w http.ResponseWriter, req *http.Request) {
	user, ok := h.controller.session.User()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"usuario":       user,
	})
}

// Logout clears the session from memory and disk.
func (h *Handlers) Logout(w http.ResponseWriter, req *http.Request) {
	h.controller.session.Logout()
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// UpdateProfile pushes profile changes to the gateway and merges them into
// the cached session user.
func (h *Handlers) UpdateProfile(w http.ResponseWriter, req *http.Request) {
	var partial gateway.User
	if err := json.NewDecoder(req.Body).Decode(&partial); err != nil {
		writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}

	current, ok := h.controller.session.User()
	if !ok {
		writeError(w, http.StatusUnauthorized, "não autenticado")
		return
	}

	if _, err := h.controller.gateway.UpdateUser(req.Context(), current.ID, partial); err != nil {
		h.controller.logger.Errorf("profile update failed: %v", err)
		writeError(w, http.StatusBadGateway, "erro ao atualizar perfil")
		return
	}

	user := h.controller.session.UpdateProfile(partial)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"usuario": user,
	})
}
