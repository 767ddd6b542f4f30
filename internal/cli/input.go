// Package cli handles cmd line input and suggestions for DBG and testing various features
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"

	"sakanadex/internal/logger"
	"sakanadex/pkg/search"
)

// InputHandler processes user input from stdin, resolving each line to
// ranked species suggestions. The detailed flag switches the output to
// the match-explanation view.
type InputHandler struct {
	engine       *search.Engine
	suggestLimit int
	detailed     bool
	log          *charmlog.Logger
}

// NewInputHandler handles initialization of the InputHandler with basic parameters.
func NewInputHandler(engine *search.Engine, limit int, detailed bool) *InputHandler {
	return &InputHandler{
		engine:       engine,
		suggestLimit: limit,
		detailed:     detailed,
		log:          logger.Default("cli"),
	}
}

// Start begins the interface loop.
// It continuously prompts for input, reads a line from stdin,
// and passes the trimmed input to handleInput() for processing.
// An empty line shows the popular entries, same as an empty search box.
// The loop terminates if an error occurs while reading from stdin.
func (h *InputHandler) Start() error {
	h.log.Print("sakanadex CLI")
	reader := bufio.NewReader(os.Stdin)
	h.log.Print("type a species name and press Enter to see suggestions (Ctrl+C to exit):")

	for {
		h.log.Print("> ")
		query, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		h.handleInput(strings.TrimRight(query, "\r\n"))
	}
}

// handleInput runs a single query and prints the ranked results.
func (h *InputHandler) handleInput(query string) {
	start := time.Now()
	opts := search.SearchOptions{Limit: h.suggestLimit}

	if h.detailed {
		results := h.engine.SearchDetailed(query, opts)
		elapsed := time.Since(start)
		h.log.Debugf("took [ %v ] for query '%s'", elapsed, query)
		if len(results) == 0 {
			h.log.Warnf("no matches for '%s'", query)
			return
		}
		h.log.Printf("found %d matches for '%s':", len(results), query)
		for i, r := range results {
			clName := fmt.Sprintf("\033[38;5;75m%s\033[0m", r.Entity.CanonicalName)
			h.log.Printf("%2d. %-24s score %3d via %s (%s)", i+1, clName, r.Score, r.MatchedField, r.MatchedText)
		}
		return
	}

	results := h.engine.Search(query, opts)
	elapsed := time.Since(start)
	h.log.Debugf("took [ %v ] for query '%s'", elapsed, query)

	if len(results) == 0 {
		h.log.Warnf("no matches for '%s'", query)
		return
	}
	h.log.Printf("found %d matches for '%s':", len(results), query)
	for i, e := range results {
		clName := fmt.Sprintf("\033[38;5;75m%s\033[0m", e.CanonicalName)
		h.log.Printf("%2d. %-24s (pop: %3d, %s)", i+1, clName, e.Popularity, e.Category)
	}
}
