package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"NoteBoard/internal/config"
	"NoteBoard/internal/export"
	"NoteBoard/internal/session"
	"NoteBoard/internal/state"
	"NoteBoard/internal/surface"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// renderJob is one render invocation.
type renderJob struct {
	Strokes []state.Stroke
	Edit    string // stored drawing path, empty for a new drawing
	Save    bool
	Out     string
	PDF     string
}

func runRender(c *cli.Context, logger *logrus.Logger) error {
	job := renderJob{
		Edit: c.String("edit"),
		Save: c.Bool("save"),
		Out:  c.String("out"),
		PDF:  c.String("pdf"),
	}
	if !job.Save && job.Out == "" && job.PDF == "" {
		return errors.New("render: nothing to do, pass --save, --out or --pdf")
	}
	strokes, err := readStrokes(c.String("strokes"))
	if err != nil {
		return err
	}
	job.Strokes = strokes

	cfg, err := loadConfig(c, logger)
	if err != nil {
		return err
	}
	var store session.Store
	if job.Save || job.Edit != "" {
		client, err := newClient(c.Context, cfg, logger)
		if err != nil {
			return err
		}
		store = client
	}

	ref, err := render(c.Context, cfg, store, job, logger)
	if err != nil {
		return err
	}
	switch {
	case ref.Filename != "":
		fmt.Fprintf(c.App.Writer, "saved %s\n", ref.Filename)
	case job.Save:
		fmt.Fprintln(c.App.Writer, "saved")
	}
	return nil
}

// render replays job onto a fresh surface, optionally over a stored drawing,
// then saves and exports it. It returns the saved reference when job.Save.
func render(ctx context.Context, cfg config.Config, store session.Store, job renderJob, logger logrus.FieldLogger) (state.ImageRef, error) {
	surf := surface.New(cfg.Width, cfg.Height, logger)
	sess := session.New(store, surf, logger)

	if job.Edit != "" {
		if err := sess.OpenForEdit(ctx, state.NewImageRef(job.Edit)); err != nil {
			return state.ImageRef{}, err
		}
	}

	tools := state.NewTools()
	capture := surface.NewCapture(surf, tools)
	for _, st := range job.Strokes {
		radius := st.Radius
		if radius <= 0 {
			radius = cfg.BrushRadius
		}
		tools.SelectColor(st.Color)
		capture.SetRadius(radius)
		capture.PointerDown(st.Points[0])
		for _, p := range st.Points[1:] {
			capture.PointerMove(p)
		}
		capture.PointerUp()
	}
	logger.Debugf("replayed %d strokes", len(job.Strokes))

	data, err := surface.Encode(surf, nil)
	if err != nil {
		return state.ImageRef{}, err
	}
	if job.Out != "" {
		if err := export.WriteFile(job.Out, data); err != nil {
			return state.ImageRef{}, err
		}
	}
	if job.PDF != "" {
		title := strings.TrimSuffix(filepath.Base(job.PDF), filepath.Ext(job.PDF))
		if err := export.WritePDF(job.PDF, data, title); err != nil {
			return state.ImageRef{}, err
		}
	}
	if !job.Save {
		return state.ImageRef{}, nil
	}
	return sess.Save(ctx)
}

// readStrokes loads a JSON list of strokes. Colours are hex strings.
func readStrokes(path string) ([]state.Stroke, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read strokes: %w", err)
	}
	var strokes []state.Stroke
	if err := json.Unmarshal(data, &strokes); err != nil {
		return nil, fmt.Errorf("parse strokes %s: %w", path, err)
	}
	for i, st := range strokes {
		if len(st.Points) == 0 {
			return nil, &state.ValidationError{Field: fmt.Sprintf("strokes[%d].points", i), Reason: "must not be empty"}
		}
	}
	return strokes, nil
}
