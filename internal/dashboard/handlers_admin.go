package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/joao-cbj/silowatch/internal/gateway"
)

const minPasswordLength = 6

// GetSiloStatistics serves the gateway's aggregate silo counts.
func (h *Handlers) GetSiloStatistics(w http.ResponseWriter, req *http.Request) {
	stats, err := h.controller.gateway.SiloStatistics(req.Context())
	if err != nil {
		h.controller.logger.Errorf("silo statistics fetch failed: %v", err)
		writeError(w, http.StatusBadGateway, "erro ao buscar estatísticas de silos")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handlers) ListSilos(w http.ResponseWriter, req *http.Request) {
	silos, err := h.controller.gateway.ListSilos(req.Context())
	if err != nil {
		h.controller.logger.Errorf("silo list fetch failed: %v", err)
		writeError(w, http.StatusBadGateway, "erro ao buscar silos")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "silos": silos})
}

func (h *Handlers) CreateSilo(w http.ResponseWriter, req *http.Request) {
	var silo gateway.Silo
	if err := json.NewDecoder(req.Body).Decode(&silo); err != nil {
		writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}
	if silo.Name == "" {
		writeError(w, http.StatusBadRequest, "nome é obrigatório")
		return
	}

	created, err := h.controller.gateway.CreateSilo(req.Context(), silo)
	if err != nil {
		h.controller.logger.Errorf("silo create failed: %v", err)
		writeError(w, http.StatusBadGateway, "erro ao criar silo")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handlers) UpdateSilo(w http.ResponseWriter, req *http.Request) {
	var silo gateway.Silo
	if err := json.NewDecoder(req.Body).Decode(&silo); err != nil {
		writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}

	if err := h.controller.gateway.UpdateSilo(req.Context(), mux.Vars(req)["id"], silo); err != nil {
		h.controller.logger.Errorf("silo update failed: %v", err)
		writeError(w, http.StatusBadGateway, "erro ao atualizar silo")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handlers) DeleteSilo(w http.ResponseWriter, req *http.Request) {
	if err := h.controller.gateway.DeleteSilo(req.Context(), mux.Vars(req)["id"]); err != nil {
		h.controller.logger.Errorf("silo delete failed: %v", err)
		writeError(w, http.StatusBadGateway, "erro ao remover silo")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handlers) ListUsers(w http.ResponseWriter, req *http.Request) {
	users, err := h.controller.gateway.ListUsers(req.Context())
	if err != nil {
		h.controller.logger.Errorf("user list fetch failed: %v", err)
		writeError(w, http.StatusBadGateway, "erro ao buscar usuários")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "usuarios": users})
}

func (h *Handlers) CreateUser(w http.ResponseWriter, req *http.Request) {
	var user gateway.NewUser
	if err := json.NewDecoder(req.Body).Decode(&user); err != nil {
		writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}
	if user.Name == "" || user.Email == "" {
		writeError(w, http.StatusBadRequest, "nome e email são obrigatórios")
		return
	}
	if len(user.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "a senha deve ter pelo menos 6 caracteres")
		return
	}

	created, err := h.controller.gateway.CreateUser(req.Context(), user)
	if err != nil {
		h.controller.logger.Errorf("user create failed: %v", err)
		writeError(w, http.StatusBadGateway, "erro ao criar usuário")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handlers) UpdateUser(w http.ResponseWriter, req *http.Request) {
	var user gateway.User
	if err := json.NewDecoder(req.Body).Decode(&user); err != nil {
		writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}

	updated, err := h.controller.gateway.UpdateUser(req.Context(), mux.Vars(req)["id"], user)
	if err != nil {
		h.controller.logger.Errorf("user update failed: %v", err)
		writeError(w, http.StatusBadGateway, "erro ao atualizar usuário")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handlers) DeleteUser(w http.ResponseWriter, req *http.Request) {
	if err := h.controller.gateway.DeleteUser(req.Context(), mux.Vars(req)["id"]); err != nil {
		h.controller.logger.Errorf("user delete failed: %v", err)
		writeError(w, http.StatusBadGateway, "erro ao remover usuário")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

type changePasswordRequest struct {
	Current string `json:"senhaAtual"`
	Updated string `json:"novaSenha"`
}

func (h *Handlers) ChangePassword(w http.ResponseWriter, req *http.Request) {
	var body changePasswordRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}
	if body.Current == "" {
		writeError(w, http.StatusBadRequest, "senha atual é obrigatória")
		return
	}
	if len(body.Updated) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "a nova senha deve ter pelo menos 6 caracteres")
		return
	}

	if err := h.controller.gateway.ChangePassword(req.Context(), mux.Vars(req)["id"], body.Current, body.Updated); err != nil {
		h.controller.logger.Errorf("password change failed: %v", err)
		writeError(w, http.StatusBadGateway, "erro ao alterar senha")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handlers) GetMFAStatus(w http.ResponseWriter, req *http.Request) {
	enabled, err := h.controller.gateway.MFAStatus(req.Context())
	if err != nil {
		h.controller.logger.Errorf("mfa status fetch failed: %v", err)
		writeError(w, http.StatusBadGateway, "erro ao consultar MFA")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"enabled": enabled})
}

func (h *Handlers) SetupMFA(w http.ResponseWriter, req *http.Request) {
	setup, err := h.controller.gateway.MFASetup(req.Context())
	if err != nil {
		h.controller.logger.Errorf("mfa setup failed: %v", err)
		writeError(w, http.StatusBadGateway, "erro ao iniciar configuração de MFA")
		return
	}
	writeJSON(w, http.StatusOK, setup)
}

type mfaVerifyRequest struct {
	Code string `json:"code"`
}

func (h *Handlers) VerifyMFA(w http.ResponseWriter, req *http.Request) {
	var body mfaVerifyRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}
	if body.Code == "" {
		writeError(w, http.StatusBadRequest, "código é obrigatório")
		return
	}

	if err := h.controller.gateway.MFAVerify(req.Context(), body.Code); err != nil {
		h.controller.logger.Warnf("mfa verify failed: %v", err)
		writeError(w, http.StatusBadGateway, "código MFA inválido")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handlers) DisableMFA(w http.ResponseWriter, req *http.Request) {
	if err := h.controller.gateway.MFADisable(req.Context()); err != nil {
		h.controller.logger.Errorf("mfa disable failed: %v", err)
		writeError(w, http.StatusBadGateway, "erro ao desativar MFA")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handlers) GetProvisioningStatus(w http.ResponseWriter, req *http.Request) {
	status, err := h.controller.gateway.ProvisioningGatewayStatus(req.Context())
	if err != nil {
		h.controller.logger.Errorf("provisioning status fetch failed: %v", err)
		writeError(w, http.StatusBadGateway, "erro ao consultar gateway de provisionamento")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handlers) ScanDevices(w http.ResponseWriter, req *http.Request) {
	devices, err := h.controller.gateway.ScanDevices(req.Context())
	if err != nil {
		h.controller.logger.Errorf("device scan failed: %v", err)
		writeError(w, http.StatusBadGateway, "erro ao buscar dispositivos")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"dispositivos": devices})
}

type provisionRequest struct {
	SiloID    string `json:"siloId"`
	DeviceMAC string `json:"macSilo"`
}

func (h *Handlers) ProvisionDevice(w http.ResponseWriter, req *http.Request) {
	var body provisionRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}
	if body.SiloID == "" || body.DeviceMAC == "" {
		writeError(w, http.StatusBadRequest, "siloId e macSilo são obrigatórios")
		return
	}

	if err := h.controller.gateway.Provision(req.Context(), body.SiloID, body.DeviceMAC); err != nil {
		h.controller.logger.Errorf("provisioning failed: %v", err)
		writeError(w, http.StatusBadGateway, "erro ao provisionar dispositivo")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

type unpairRequest struct {
	SiloID string `json:"siloId"`
}

func (h *Handlers) UnpairDevice(w http.ResponseWriter, req *http.Request) {
	var body unpairRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}
	if body.SiloID == "" {
		writeError(w, http.StatusBadRequest, "siloId é obrigatório")
		return
	}

	if err := h.controller.gateway.Unpair(req.Context(), body.SiloID); err != nil {
		h.controller.logger.Errorf("unpair failed: %v", err)
		writeError(w, http.StatusBadGateway, "erro ao desintegrar dispositivo")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
