package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"ai-permit-planner-be/pkg/debate"
	"ai-permit-planner-be/pkg/pipeline"
	"ai-permit-planner-be/pkg/stage"
	"ai-permit-planner-be/pkg/utils"

	"github.com/fatih/color"
)

const maxLineRunes = 240

var (
	stageColor   = color.New(color.FgCyan, color.Bold)
	partialColor = color.New(color.Faint)
	headerColor  = color.New(color.FgGreen, color.Bold)

	debateColors = map[debate.MessageType]*color.Color{
		debate.TypeWarning:      color.New(color.FgRed),
		debate.TypeDisagreement: color.New(color.FgMagenta),
		debate.TypeCorrection:   color.New(color.FgMagenta),
		debate.TypeAgreement:    color.New(color.FgGreen),
		debate.TypeConsensus:    color.New(color.FgGreen),
		debate.TypeQuestion:     color.New(color.FgYellow),
		debate.TypeSuggestion:   color.New(color.FgBlue),
		debate.TypeInsight:      color.New(color.FgBlue),
	}
	defaultDebateColor = color.New(color.FgWhite)
)

// renderer prints stream items as a readable transcript.
type renderer struct {
	w         io.Writer
	catalog   *stage.Catalog
	verbose   bool
	completed bool
}

func newRenderer(w io.Writer, catalog *stage.Catalog, verbose bool) *renderer {
	return &renderer{w: w, catalog: catalog, verbose: verbose}
}

func (r *renderer) Completed() bool {
	return r.completed
}

func (r *renderer) Render(item pipeline.StreamItem) error {
	var err error
	switch item.Kind {
	case pipeline.KindProgress:
		err = r.progress(item.Progress)
	case pipeline.KindDebate:
		err = r.debate(item.Debate)
	case pipeline.KindComplete:
		r.completed = true
		err = r.complete(item.Complete)
	}
	return err
}

func (r *renderer) progress(p *pipeline.Progress) error {
	text := utils.Truncate(utils.CollapseWhitespace(p.Text), maxLineRunes)
	if text == "" {
		return nil
	}
	name := r.catalog.DisplayName(p.StageID)
	if p.Partial {
		if !r.verbose {
			return nil
		}
		_, err := partialColor.Fprintf(r.w, "  %s: %s\n", name, text)
		return err
	}
	if _, err := stageColor.Fprintf(r.w, "%s", name); err != nil {
		return err
	}
	_, err := fmt.Fprintf(r.w, ": %s\n", text)
	return err
}

func (r *renderer) debate(m *debate.Message) error {
	c, ok := debateColors[m.Type]
	if !ok {
		c = defaultDebateColor
	}
	label := strings.ToUpper(string(m.Type))
	if m.ReferencesDisplayName != "" {
		label += " -> " + m.ReferencesDisplayName
	}
	_, err := c.Fprintf(r.w, "    [%s] %s\n", label, m.Content)
	return err
}

func (r *renderer) complete(c *pipeline.Complete) error {
	data, err := json.MarshalIndent(c.Result, "", "  ")
	if err != nil {
		return err
	}
	if _, err := headerColor.Fprintf(r.w, "\n=== Result (session %s) ===\n", c.SessionID); err != nil {
		return err
	}
	_, err = fmt.Fprintf(r.w, "%s\n", data)
	return err
}
