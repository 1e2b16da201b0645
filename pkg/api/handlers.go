package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/constraintwatch/constraintwatch/ent"
	"github.com/constraintwatch/constraintwatch/ent/event"
	"github.com/constraintwatch/constraintwatch/ent/source"
	"github.com/constraintwatch/constraintwatch/ent/theme"
)

const defaultListLimit = 50

// heatmapHandler handles GET /api/heatmap?weeks=N — the ISO-week x
// constraint_layer tightening_score grid used by the dashboard's heatmap
// view. Defaults to 12 weeks.
func (s *Server) heatmapHandler(c *gin.Context) {
	weeks := intQuery(c, "weeks", 12)
	since := time.Now().AddDate(0, 0, -7*weeks)

	events, err := s.db.Event.Query().
		Where(event.CreatedAtGTE(since)).
		All(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	type cell struct {
		Week            string `json:"week"`
		ConstraintLayer string `json:"constraint_layer"`
	}
	counts := make(map[cell]int)
	for _, ev := range events {
		isoYear, isoWeek := ev.CreatedAt.ISOWeek()
		key := cell{
			Week:            strconv.Itoa(isoYear) + "-W" + strconv.Itoa(isoWeek),
			ConstraintLayer: string(ev.ConstraintLayer),
		}
		counts[key]++
	}

	rows := make([]gin.H, 0, len(counts))
	for k, n := range counts {
		rows = append(rows, gin.H{
			"week":             k.Week,
			"constraint_layer": k.ConstraintLayer,
			"event_count":      n,
		})
	}
	c.JSON(http.StatusOK, gin.H{"weeks": weeks, "cells": rows})
}

// listThemesHandler handles GET /api/themes?status=&limit=.
func (s *Server) listThemesHandler(c *gin.Context) {
	q := s.db.Theme.Query().Order(ent.Desc(theme.FieldTighteningScore))
	if status := c.Query("status"); status != "" {
		q = q.Where(theme.StatusEQ(theme.Status(status)))
	}
	limit := intQuery(c, "limit", defaultListLimit)

	themes, err := q.Limit(limit).All(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, themes)
}

// getThemeHandler handles GET /api/themes/:id.
func (s *Server) getThemeHandler(c *gin.Context) {
	th, err := s.db.Theme.Get(c.Request.Context(), c.Param("id"))
	if ent.IsNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "theme not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, th)
}

// listEventsHandler handles GET /api/events?layer=&direction=&event_type=&limit=&offset=.
func (s *Server) listEventsHandler(c *gin.Context) {
	q := s.db.Event.Query().Order(ent.Desc(event.FieldCreatedAt))
	if layer := c.Query("layer"); layer != "" {
		q = q.Where(event.ConstraintLayerEQ(event.ConstraintLayer(layer)))
	}
	if dir := c.Query("direction"); dir != "" {
		q = q.Where(event.DirectionEQ(event.Direction(dir)))
	}
	if et := c.Query("event_type"); et != "" {
		q = q.Where(event.EventTypeEQ(event.EventType(et)))
	}

	limit := intQuery(c, "limit", defaultListLimit)
	offset := intQuery(c, "offset", 0)

	events, err := q.Limit(limit).Offset(offset).All(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, events)
}

// listSourcesHandler handles GET /api/sources?status=&fetch_method=&limit=.
func (s *Server) listSourcesHandler(c *gin.Context) {
	q := s.db.Source.Query().Order(ent.Asc(source.FieldDisplayName))
	if status := c.Query("status"); status != "" {
		q = q.Where(source.StatusEQ(source.Status(status)))
	}
	if fm := c.Query("fetch_method"); fm != "" {
		q = q.Where(source.FetchMethodEQ(source.FetchMethod(fm)))
	}
	limit := intQuery(c, "limit", defaultListLimit)

	sources, err := q.Limit(limit).All(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sources)
}

// sourceStatsHandler handles GET /api/sources/stats — a per-status count
// breakdown of the source catalog.
func (s *Server) sourceStatsHandler(c *gin.Context) {
	statuses := []source.Status{
		source.StatusDISCOVERED, source.StatusPROVISIONAL, source.StatusCONFIRMED, source.StatusDISABLED,
	}

	stats := make(map[string]int, len(statuses))
	for _, st := range statuses {
		n, err := s.db.Source.Query().Where(source.StatusEQ(st)).Count(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		stats[string(st)] = n
	}
	c.JSON(http.StatusOK, stats)
}

func intQuery(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
