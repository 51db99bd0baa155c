package main

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Simplici0/importcalc/internal/logging"
	"github.com/Simplici0/importcalc/internal/vehicle"
)

type analyzeRequest struct {
	Images           []string `json:"images"`
	Image            string   `json:"image"`
	AllowPlaceholder bool     `json:"allowPlaceholder"`
}

func (req analyzeRequest) payloads() []string {
	out := make([]string, 0, len(req.Images)+1)
	for _, img := range req.Images {
		if img != "" {
			out = append(out, img)
		}
	}
	if req.Image != "" {
		out = append(out, req.Image)
	}
	return out
}

type analyzeResponse struct {
	vehicle.Analysis
	Placeholder bool `json:"placeholder"`
}

func (s *server) handleAnalyzeVehicle(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	analysis, err := s.analyzer.Analyze(r.Context(), req.payloads())
	var parseErr *vehicle.ParseError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, analyzeResponse{Analysis: analysis})
	case errors.As(err, &parseErr) && req.AllowPlaceholder:
		logging.FromContext(r.Context()).Warn("unreadable vehicle analysis, using placeholder",
			zap.String("raw", parseErr.Raw))
		writeJSON(w, http.StatusOK, analyzeResponse{Analysis: vehicle.PlaceholderAnalysis(), Placeholder: true})
	default:
		writeError(w, r, err)
	}
}

type clarifyRequest struct {
	Vehicle vehicle.Analysis `json:"vehicle"`
	Answers map[string]any   `json:"answers"`
}

func (s *server) handleClarifyVehicle(w http.ResponseWriter, r *http.Request) {
	var req clarifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := vehicle.Clarify(req.Vehicle, req.Answers)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type marketResponse struct {
	Estimate *vehicle.PriceRange `json:"estimate"`
}

func (s *server) handleEstimateMarketPrice(w http.ResponseWriter, r *http.Request) {
	var d vehicle.Description
	if err := decodeJSON(r, &d); err != nil {
		writeError(w, r, err)
		return
	}
	estimate, err := s.analyzer.EstimateMarketPrice(r.Context(), d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, marketResponse{Estimate: estimate})
}
