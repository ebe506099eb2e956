package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/venture-watch/internal/export"
	"github.com/sells-group/venture-watch/internal/model"
	"github.com/sells-group/venture-watch/internal/query"
)

// filterFromQuery builds a collection filter from request parameters.
func (s *Server) filterFromQuery(q url.Values) (query.Filter, error) {
	f := query.Filter{
		Industry: strings.TrimSpace(q.Get("industry")),
		Round:    model.ParseFundingRound(q.Get("round")),
		Location: strings.TrimSpace(q.Get("location")),
	}
	if v := q.Get("min_funding"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil || n < 0 {
			return f, eris.Errorf("invalid min_funding %q", v)
		}
		f.MinFunding = n
	}
	days, err := query.ParsePeriod(q.Get("period"))
	if err != nil {
		return f, err
	}
	if days > 0 {
		f.Since = query.Since(s.now(), days)
	}
	return f, nil
}

func (s *Server) filtered(w http.ResponseWriter, r *http.Request) ([]model.Record, bool) {
	f, err := s.filterFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return f.Apply(s.collection.Read()), true
}

func (s *Server) handleStartups(w http.ResponseWriter, r *http.Request) {
	records, ok := s.filtered(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(records),
		"startups": records,
	})
}

func (s *Server) handleStartup(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	rec, ok := query.Find(s.collection.Read(), name)
	if !ok {
		writeError(w, http.StatusNotFound, "startup not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	records, ok := s.filtered(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"summary":     query.Summarize(records, s.now()),
		"by_industry": query.FundingBy(records, model.FieldIndustry),
		"by_round":    query.FundingBy(records, model.FieldFundingRound),
		"timeline":    query.Timeline(records),
	})
}

func (s *Server) handleFacets(w http.ResponseWriter, _ *http.Request) {
	records := s.collection.Read()
	lo, hi := query.FundingRange(records)
	from, to := query.DateRange(records, s.now())
	writeJSON(w, http.StatusOK, map[string]any{
		"industries":    query.UniqueValues(records, model.FieldIndustry),
		"rounds":        query.UniqueValues(records, model.FieldFundingRound),
		"locations":     query.UniqueValues(records, model.FieldLocation),
		"sources":       query.UniqueValues(records, model.FieldSource),
		"funding_range": map[string]float64{"min": lo, "max": hi},
		"date_range":    map[string]model.Date{"from": from, "to": to},
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	records, ok := s.filtered(w, r)
	if !ok {
		return
	}

	var err error
	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="startups.csv"`)
		err = export.WriteCSV(w, records)
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="startups.xlsx"`)
		err = export.StreamXLSX(w, records)
	default:
		writeError(w, http.StatusBadRequest, "unsupported format "+strconv.Quote(format))
		return
	}
	if err != nil {
		zap.L().Error("api: export", zap.Error(err))
	}
}
