package api

import (
	"errors"
	"fmt"
	"net/http"

	"airbnb-pricer/metrics"
	"airbnb-pricer/models"
	"airbnb-pricer/predictor"
	"airbnb-pricer/utils"
)

// Handler serves predictions from a single loaded model. The model is never
// replaced after construction, so handlers share it without locking.
type Handler struct {
	model  predictor.Regressor
	logger *utils.Logger
}

// NewHandler creates a Handler for model.
func NewHandler(model predictor.Regressor, logger *utils.Logger) (*Handler, error) {
	if model == nil {
		return nil, errors.New("api: model is required")
	}
	if logger == nil {
		logger = utils.Nop()
	}
	return &Handler{model: model, logger: logger}, nil
}

// Health reports that the model is loaded.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Characteristics describes the loaded model.
func (h *Handler) Characteristics(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.model.Characteristics())
}

// Features lists the feature order expected by PredictList.
func (h *Handler) Features(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string][]string{"features": h.model.Features()})
}

// Predict scores one named, already-encoded listing.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	var req models.ListingFeatures
	if err := decodeJSON(r, &req); err != nil {
		metrics.RecordPrediction("predict", err)
		h.respondError(w, r, http.StatusBadRequest, codeInvalidJSON, "invalid request body: "+err.Error())
		return
	}
	if err := validateStruct(&req); err != nil {
		metrics.RecordPrediction("predict", err)
		h.respondError(w, r, http.StatusBadRequest, codeValidation, err.Error())
		return
	}
	x, ok := req.Vector()
	if !ok {
		err := errors.New("incomplete feature record")
		metrics.RecordPrediction("predict", err)
		h.respondError(w, r, http.StatusBadRequest, codeValidation, err.Error())
		return
	}
	h.score(w, r, "predict", x)
}

// PredictList scores one listing given as a positional feature array.
func (h *Handler) PredictList(w http.ResponseWriter, r *http.Request) {
	var req models.ListingArray
	if err := decodeJSON(r, &req); err != nil {
		metrics.RecordPrediction("predict_list", err)
		h.respondError(w, r, http.StatusBadRequest, codeInvalidJSON, "invalid request body: "+err.Error())
		return
	}
	if err := validateStruct(&req); err != nil {
		metrics.RecordPrediction("predict_list", err)
		h.respondError(w, r, http.StatusBadRequest, codeValidation, err.Error())
		return
	}
	if want := len(h.model.Features()); len(req.Data) != want {
		err := fmt.Errorf("data has %d values, want %d", len(req.Data), want)
		metrics.RecordPrediction("predict_list", err)
		h.respondError(w, r, http.StatusBadRequest, codeValidation, err.Error())
		return
	}
	h.score(w, r, "predict_list", req.Data)
}

func (h *Handler) score(w http.ResponseWriter, r *http.Request, endpoint string, x []float64) {
	y, err := h.model.Predict(x)
	metrics.RecordPrediction(endpoint, err)
	if err != nil {
		h.respondError(w, r, http.StatusUnprocessableEntity, codePredictionFailed, err.Error())
		return
	}
	h.logger.Debug().
		Str("request_id", RequestIDFromContext(r.Context())).
		Str("endpoint", endpoint).
		Float64("prediction", y).
		Msg("[api] Prediction served")
	h.respondJSON(w, http.StatusOK, models.Prediction{Prediction: y})
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.respondError(w, r, http.StatusNotFound, codeNotFound, "no route for "+r.Method+" "+r.URL.Path)
}
