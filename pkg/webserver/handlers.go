package webserver

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"

	"f1laptrend/pkg/circuits"
	"f1laptrend/pkg/dashboard"
	"f1laptrend/pkg/render"
	"f1laptrend/pkg/trend"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	sparkWidth  = 160
	sparkHeight = 40
	sparkColor  = "#4cc9f0"
)

func (m *Manager) circuitsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, circuits.All())
	}
}

// load fetches the three datasets of a circuit with a loader private to the
// request and waits until they settle.
func (m *Manager) load(ctx context.Context, circuit string) (dashboard.Datasets, error) {
	ctx, cancel := context.WithTimeout(ctx, m.opts.LoadTimeout)
	defer cancel()

	l := dashboard.NewLoader(ctx, m.fetcher, m.ps, m.logger)
	defer l.Close()
	l.Select(circuit)
	if err := l.Wait(ctx); err != nil {
		return dashboard.Datasets{}, err
	}
	return l.Current(), nil
}

// deriveRequest parses the inputs of a circuit request and derives its view.
// It writes the error response itself and returns false on failure.
func (m *Manager) deriveRequest(w http.ResponseWriter, r *http.Request) (dashboard.View, bool) {
	circuit := mux.Vars(r)["circuit"]
	in, err := dashboard.ParseQuery(m.opts.Defaults.WithCircuit(circuit), r.URL.Query())
	if err == nil {
		err = in.Validate()
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return dashboard.View{}, false
	}

	d, err := m.load(r.Context(), circuit)
	if err != nil {
		m.logger.Warn("load timed out", zap.String("circuit", circuit), zap.Error(err))
		writeError(w, http.StatusGatewayTimeout, "loading "+circuit+": "+err.Error())
		return dashboard.View{}, false
	}
	return dashboard.Derive(in, d), true
}

func (m *Manager) viewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := m.deriveRequest(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func (m *Manager) chartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := m.deriveRequest(w, r)
		if !ok {
			return
		}
		m.writePNG(w, v.Comparison.Panel, func(b *bytes.Buffer) error {
			return render.ComparisonChart(b, v)
		})
	}
}

func (m *Manager) trendHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := m.deriveRequest(w, r)
		if !ok {
			return
		}
		m.writePNG(w, v.Reference.Panel, func(b *bytes.Buffer) error {
			return render.ReferenceChart(b, v)
		})
	}
}

func (m *Manager) sparklineHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		width := intParam(r, "w", sparkWidth)
		height := intParam(r, "h", sparkHeight)

		circuit := mux.Vars(r)["circuit"]
		d, err := m.load(r.Context(), circuit)
		if err != nil {
			writeError(w, http.StatusGatewayTimeout, "loading "+circuit+": "+err.Error())
			return
		}
		panel := dashboard.Panel{Status: d.Summary.Status, Error: d.Summary.Err}
		m.writePNG(w, panel, func(b *bytes.Buffer) error {
			return render.Sparkline(b, trend.PolePoints(d.Summary.Data), width, height, sparkColor)
		})
	}
}

func (m *Manager) writePNG(w http.ResponseWriter, p dashboard.Panel, draw func(*bytes.Buffer) error) {
	if p.Status == dashboard.StatusFailed {
		writeError(w, http.StatusBadGateway, p.Error)
		return
	}

	var b bytes.Buffer
	err := draw(&b)
	switch {
	case errors.Is(err, render.ErrNoData):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		m.logger.Error("rendering chart", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(b.Len()))
	_, _ = w.Write(b.Bytes())
}

func intParam(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 16 || v > 2000 {
		return fallback
	}
	return v
}
