package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seqlab/biolapse/internal/journal"
	"github.com/seqlab/biolapse/internal/store"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleSession reports the persisted session state and journal stats.
func (s *Server) handleSession(c *gin.Context) {
	st, err := s.store.Load()
	if err != nil {
		if errors.Is(err, store.ErrNotInitialized) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not initialized"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	stats, err := s.journal.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": gin.H{
			"name":       st.Session.Name,
			"output_dir": st.Session.OutputDir,
			"started_at": st.Session.StartedAt.Format(time.RFC3339),
		},
		"profile": gin.H{
			"iso":              st.Profile.ISO,
			"shutter_speed_us": st.Profile.ShutterSpeedUs,
			"gain_red":         st.Profile.GainRed,
			"gain_blue":        st.Profile.GainBlue,
		},
		"stats": stats,
	})
}

// handleCaptures lists journal rows, newest first. ?limit= caps the count
// (default 50).
func (s *Server) handleCaptures(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = v
	}

	captures, err := s.journal.List(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if captures == nil {
		captures = []journal.Capture{}
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(captures),
		"captures": captures,
	})
}

// handleLatestImage serves the most recently captured file.
func (s *Server) handleLatestImage(c *gin.Context) {
	latest, err := s.journal.Latest()
	if err != nil {
		if errors.Is(err, journal.ErrEmpty) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no captures yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "image/png")
	c.File(latest.Path)
}
