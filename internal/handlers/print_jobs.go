package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/xelth-com/poslabel/internal/websocket"
)

func queryLimit(req *http.Request) int {
	n, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	return n
}

// listPrintJobs returns the most recent print jobs first
func (r *Router) listPrintJobs(w http.ResponseWriter, req *http.Request) {
	jobs, err := r.deps.PrintJobs.List(req.Context(), queryLimit(req))
	if err != nil {
		fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, jobs)
}

// updatePrintJob records a status reported by whatever drives the printer
func (r *Router) updatePrintJob(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := decodeJSON(w, req, &body); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	job, err := r.deps.PrintJobs.UpdateStatus(req.Context(), mux.Vars(req)["id"], body.Status, body.Error)
	if err != nil {
		fail(w, err)
		return
	}
	r.notify(websocket.Event{Type: websocket.EventPrintUpdated, PrintJobID: job.ID, Status: job.Status})
	respondJSON(w, http.StatusOK, job)
}
