package worker_handler

import (
	"encoding/json"
	"fmt"

	"github.com/telecare/consult-session/internal/utils/types"
	worker_service "github.com/telecare/consult-session/internal/worker/worker-service"
)

func (h *WorkerHandler) HandleConsultationEnded(raw json.RawMessage) error {
	var payload types.ConsultationEndedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("invalid consultation ended payload: %w", err)
	}

	return worker_service.SendConsultationSummary(payload)
}
