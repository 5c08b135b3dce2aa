package ticket

import (
	"errors"
	"log"
	"net/http"

	"servicecenter/internal/api"
	"servicecenter/internal/workflow"
)

// writeRejection maps a workflow rejection to a response. Missing input is a
// 422; a required confirmation is a 409 the client answers by resending with
// acknowledgeCostReset set.
func writeRejection(w http.ResponseWriter, rej workflow.Rejection) {
	status := http.StatusUnprocessableEntity
	var confirm *workflow.ConfirmationRequired
	if errors.As(rej, &confirm) {
		status = http.StatusConflict
	}
	api.WriteError(w, status, string(rej.ReasonCode()), rej.ReasonCode().Message())
}

func writeStoreError(w http.ResponseWriter, op string, err error) {
	var verr *ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "ticket not found")
	case errors.Is(err, ErrCostRequired):
		api.WriteError(w, http.StatusUnprocessableEntity, string(workflow.ReasonCostRequired), err.Error())
	case errors.Is(err, ErrNotTechnician):
		api.WriteError(w, http.StatusUnprocessableEntity, "NOT_A_TECHNICIAN", err.Error())
	case errors.Is(err, ErrUnknownParty):
		api.WriteError(w, http.StatusUnprocessableEntity, "UNKNOWN_REFERENCE", err.Error())
	case errors.As(err, &verr):
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", verr.Error())
	default:
		log.Printf("ticket %s failed err=%v", op, err)
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
