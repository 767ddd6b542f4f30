package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"sakanadex/pkg/catalog"
	"sakanadex/pkg/search"
	"sakanadex/pkg/species"
	"sakanadex/pkg/validate"
)

// Server handles the IPC for species search.
type Server struct {
	engine    *search.Engine
	loader    *catalog.Loader
	validator *validate.Validator
	maxLimit  int
	dec       *msgpack.Decoder
	enc       *msgpack.Encoder
}

// NewServer creates a search server using stdin/stdout for IPC.
func NewServer(engine *search.Engine, loader *catalog.Loader, validator *validate.Validator, maxLimit int) *Server {
	return NewServerWithIO(engine, loader, validator, maxLimit, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server on explicit streams, used by tests
// and embedding clients.
func NewServerWithIO(engine *search.Engine, loader *catalog.Loader, validator *validate.Validator, maxLimit int, r io.Reader, w io.Writer) *Server {
	if maxLimit <= 0 {
		maxLimit = 64
	}
	return &Server{
		engine:    engine,
		loader:    loader,
		validator: validator,
		maxLimit:  maxLimit,
		dec:       msgpack.NewDecoder(r),
		enc:       msgpack.NewEncoder(w),
	}
}

// Start begins the request loop. It returns nil on EOF and an error
// only when the input stream itself fails.
func (s *Server) Start() error {
	log.Debug("starting IPC server")
	s.send(StatusResponse{Status: "ready"})

	for {
		var req Request
		if err := s.dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			log.Errorf("decoding request frame: %v", err)
			return err
		}
		s.handle(req)
	}
}

func (s *Server) handle(req Request) {
	switch req.Op {
	case "", "search":
		s.handleSearch(req, false)
	case "detailed":
		s.handleSearch(req, true)
	case "stats":
		s.handleStats(req)
	case "validate":
		s.handleValidate(req)
	case "reload":
		s.handleReload(req)
	case "health":
		s.send(StatusResponse{ID: req.ID, Status: "ok"})
	default:
		s.sendError(req.ID, fmt.Sprintf("unknown op: %s", req.Op), 400)
	}
}

func (s *Server) handleSearch(req Request, detailed bool) {
	opts := search.SearchOptions{
		Limit:    req.Limit,
		Category: species.Category(req.Category),
		Season:   species.Season(req.Season),
		Habitat:  species.Habitat(req.Habitat),
	}
	if req.NoSort {
		off := false
		opts.SortByPopularity = &off
	}
	if opts.Limit > s.maxLimit {
		opts.Limit = s.maxLimit
	}

	start := time.Now()
	var suggestions []Suggestion
	if detailed {
		for _, r := range s.engine.SearchDetailed(req.Query, opts) {
			suggestions = append(suggestions, Suggestion{
				ID:           r.Entity.ID,
				Name:         r.Entity.CanonicalName,
				Popularity:   r.Entity.Popularity,
				Category:     string(r.Entity.Category),
				Score:        r.Score,
				MatchedField: string(r.MatchedField),
				MatchedText:  r.MatchedText,
			})
		}
	} else {
		for _, e := range s.engine.Search(req.Query, opts) {
			suggestions = append(suggestions, Suggestion{
				ID:         e.ID,
				Name:       e.CanonicalName,
				Popularity: e.Popularity,
				Category:   string(e.Category),
			})
		}
	}
	elapsed := time.Since(start)

	s.send(SearchResponse{
		ID:          req.ID,
		Suggestions: suggestions,
		Count:       len(suggestions),
		TimeTaken:   elapsed.Microseconds(),
	})
}

func (s *Server) handleStats(req Request) {
	st := s.engine.Stats()
	byCategory := make(map[string]int, len(st.ByCategory))
	for k, v := range st.ByCategory {
		byCategory[string(k)] = v
	}
	bySource := make(map[string]int, len(st.BySource))
	for k, v := range st.BySource {
		bySource[string(k)] = v
	}
	var updated int64
	if !st.LastUpdated.IsZero() {
		updated = st.LastUpdated.UnixMilli()
	}
	s.send(StatsResponse{
		ID:             req.ID,
		TotalEntities:  st.TotalEntities,
		ByCategory:     byCategory,
		BySource:       bySource,
		LastUpdated:    updated,
		IndexSizeBytes: st.ApproxIndexSizeBytes,
	})
}

func (s *Server) handleValidate(req Request) {
	r := s.validator.Validate(req.Name, req.Existing)
	resp := ValidateResponse{
		ID:        req.ID,
		OK:        r.OK,
		Sanitized: r.Sanitized,
		Code:      string(r.Code),
		Message:   r.Message,
	}
	if r.OK {
		if c := s.validator.CheckCapacity(s.engine.Stats().TotalEntities); !c.OK {
			resp.OK = false
			resp.Sanitized = ""
			resp.Code = string(c.Code)
			resp.Message = c.Message
		}
	}
	s.send(resp)
}

func (s *Server) handleReload(req Request) {
	s.loader.ClearCache()
	entities, err := s.loader.Load(context.Background())
	if err != nil {
		log.Errorf("reload failed: %v", err)
		s.sendError(req.ID, fmt.Sprintf("reload failed: %v", err), 500)
		return
	}
	s.engine.BuildIndex(entities)
	s.send(StatusResponse{ID: req.ID, Status: "reloaded", Count: len(entities)})
}

func (s *Server) send(response any) {
	if err := s.enc.Encode(response); err != nil {
		log.Errorf("encoding response: %v", err)
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.send(ErrorResponse{ID: id, Error: message, Code: code})
}
