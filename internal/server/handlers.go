package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roach88/recq/internal/ir"
	"github.com/roach88/recq/internal/metrics"
	"github.com/roach88/recq/internal/query"
	"github.com/roach88/recq/internal/schema"
	"github.com/roach88/recq/internal/source"
	"github.com/roach88/recq/internal/store"
)

// maxImportBytes bounds POST bodies.
const maxImportBytes = 8 << 20

// RecordsResponse is the body of a successful records query.
type RecordsResponse struct {
	Collection string          `json:"collection"`
	Items      []ir.Record     `json:"items"`
	Groups     []GroupResponse `json:"groups,omitempty"`
	Total      int             `json:"total"`
	HasMore    bool            `json:"has_more"`
	Offset     int             `json:"offset"`
	Limit      int             `json:"limit,omitempty"`
}

// GroupResponse is one group of a grouped query, in first-seen order.
type GroupResponse struct {
	Key   string      `json:"key"`
	Count int         `json:"count"`
	Items []ir.Record `json:"items"`
}

// CollectionsResponse lists served collections.
type CollectionsResponse struct {
	Collections []store.CollectionInfo `json:"collections"`
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": ir.Version})
}

func (s *Server) listCollections(c *gin.Context) {
	infos, err := s.source.Collections(c.Request.Context())
	if err != nil {
		s.RespondWithErr(c, err)
		return
	}
	metrics.SetCollections(len(infos))
	c.JSON(http.StatusOK, CollectionsResponse{Collections: infos})
}

func (s *Server) listDefaultRecords(c *gin.Context) {
	if s.cfg.DefaultCollection == "" {
		s.RespondWithNotFound(c, "no default collection configured")
		return
	}
	s.serveRecords(c, s.cfg.DefaultCollection)
}

func (s *Server) listRecords(c *gin.Context) {
	s.serveRecords(c, c.Param("name"))
}

func (s *Server) serveRecords(c *gin.Context, name string) {
	start := time.Now()
	ctx := c.Request.Context()

	spec, err := query.ParseValues(c.Request.URL.Query())
	if err != nil {
		s.failQuery(c, name, "", start, err)
		return
	}
	mode := ""
	if spec.Search != nil {
		mode = string(spec.Search.Mode)
	}

	sch, err := s.source.Collection(ctx, name)
	if err != nil {
		s.failQuery(c, name, mode, start, err)
		return
	}
	s.applyDefaults(&spec, sch)

	res, _, err := s.source.Run(ctx, name, spec)
	if err != nil {
		s.failQuery(c, name, mode, start, err)
		return
	}
	metrics.ObserveQuery(name, mode, metrics.OutcomeOK, time.Since(start), res.Total)

	resp := RecordsResponse{
		Collection: name,
		Items:      source.Project(res.Items, spec.Select),
		Total:      res.Total,
		HasMore:    res.HasMore,
	}
	if spec.Page != nil {
		resp.Offset, resp.Limit = spec.Page.Offset, spec.Page.Limit
	}
	for _, g := range res.Groups {
		resp.Groups = append(resp.Groups, GroupResponse{
			Key:   g.Key,
			Count: len(g.Items),
			Items: source.Project(g.Items, spec.Select),
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) failQuery(c *gin.Context, name, mode string, start time.Time, err error) {
	metrics.ObserveQuery(name, mode, outcome(err), time.Since(start), 0)
	s.RespondWithErr(c, err)
}

// applyDefaults fills what the request left open: search fields default
// to the schema's text fields, fuzzy searches get the configured
// threshold, and page size is capped at MaxLimit.
func (s *Server) applyDefaults(spec *query.Spec, sch *schema.Schema) {
	if spec.Search != nil {
		if len(spec.Search.Fields) == 0 {
			spec.Search.Fields = sch.TextFields()
		}
		if spec.Search.Mode == query.ModeFuzzy && spec.Search.Threshold == nil {
			t := s.cfg.FuzzyThreshold
			spec.Search.Threshold = &t
		}
	}
	if s.cfg.MaxLimit > 0 {
		if spec.Page == nil {
			spec.Page = &query.Page{}
		}
		if spec.Page.Limit == 0 || spec.Page.Limit > s.cfg.MaxLimit {
			spec.Page.Limit = s.cfg.MaxLimit
		}
	}
}

func (s *Server) importRecords(c *gin.Context) {
	name := c.Param("name")
	ctx := c.Request.Context()

	sch, err := s.source.Collection(ctx, name)
	if err != nil {
		s.RespondWithErr(c, err)
		return
	}

	dec := json.NewDecoder(http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes))
	dec.UseNumber()
	var raws []map[string]any
	if err := dec.Decode(&raws); err != nil {
		s.RespondWithBadRequest(c, fmt.Sprintf("request body must be a JSON array of objects: %v", err))
		return
	}

	records, err := sch.DecodeAll(raws)
	if err != nil {
		s.RespondWithErr(c, err)
		return
	}
	res, err := s.source.Import(ctx, name, records)
	if err != nil {
		s.RespondWithErr(c, err)
		return
	}
	metrics.AddImported(name, res.Inserted, res.Skipped)
	c.JSON(http.StatusOK, res)
}
