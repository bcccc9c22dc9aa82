package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	featuredomain "github.com/railzwaylabs/riskscore/internal/feature/domain"
	modeldomain "github.com/railzwaylabs/riskscore/internal/model/domain"
	scoringdomain "github.com/railzwaylabs/riskscore/internal/scoring/domain"
)

const defaultRunHistory = 10

func (s *Server) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"model_run_id": s.bundle.RunID,
	})
}

// ListFeatures returns the feature table. customer_id, industry, and region
// accept repeated or comma-separated values.
func (s *Server) ListFeatures(c *gin.Context) {
	filter := featuredomain.ListFilter{
		CustomerIDs: queryList(c, "customer_id"),
		Industries:  queryList(c, "industry"),
		Regions:     queryList(c, "region"),
	}

	rows, err := s.featureSvc.List(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if rows == nil {
		rows = []featuredomain.CustomerFeatures{}
	}

	respondList(c, rows, len(rows))
}

type predictionRequest struct {
	CustomerIDs []string `json:"customer_ids"`
	Industries  []string `json:"industries"`
	Regions     []string `json:"regions"`
}

func (s *Server) CreatePredictions(c *gin.Context) {
	// An empty body, sized or chunked, scores everything.
	var req predictionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.scoringSvc.Predict(c.Request.Context(), scoringdomain.PredictRequest{
		CustomerIDs: trimAll(req.CustomerIDs),
		Industries:  trimAll(req.Industries),
		Regions:     trimAll(req.Regions),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if resp.Predictions == nil {
		resp.Predictions = []modeldomain.Prediction{}
	}
	if resp.Excluded == nil {
		resp.Excluded = []scoringdomain.Excluded{}
	}

	respondData(c, resp)
}

type modelResponse struct {
	Current modeldomain.Info  `json:"current"`
	Runs    []modeldomain.Run `json:"runs"`
}

func (s *Server) GetModel(c *gin.Context) {
	runs, err := s.modelSvc.ListRuns(c.Request.Context(), defaultRunHistory)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if runs == nil {
		runs = []modeldomain.Run{}
	}

	respondData(c, modelResponse{
		Current: s.bundle.Info(),
		Runs:    runs,
	})
}

func queryList(c *gin.Context, key string) []string {
	var out []string
	for _, raw := range c.QueryArray(key) {
		for _, part := range strings.Split(raw, ",") {
			if v := strings.TrimSpace(part); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func trimAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.TrimSpace(v))
	}
	return out
}
