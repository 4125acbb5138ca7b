package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fairwaylabs/sgrid/internal/course"
	"github.com/fairwaylabs/sgrid/internal/dispatcher"
	"github.com/fairwaylabs/sgrid/internal/export"
	"github.com/fairwaylabs/sgrid/internal/geo"
	"github.com/fairwaylabs/sgrid/internal/worker"
	"github.com/fairwaylabs/sgrid/pkg/core"
)

type cliOptions struct {
	kind       string
	coursePath string
	shotPath   string
	outPath    string
	aim        string // "x,y[,crs]", replaces the shot's aim
	pin        string // "x,y[,crs]", replaces the shot's pin
	upload     bool
}

// parseCLIArgs reads the flags and positional arguments of the outcome and
// target commands. Flags come before the positionals.
func parseCLIArgs(kind string, args []string) (cliOptions, error) {
	opts := cliOptions{kind: kind}
	fs := flag.NewFlagSet(kind, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.aim, "aim", "", "aim point as x,y[,crs]")
	fs.StringVar(&opts.pin, "pin", "", "pin position as x,y[,crs]")
	fs.BoolVar(&opts.upload, "upload", false, "upload the grid to the statistics service")
	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	rest := fs.Args()
	if len(rest) < 2 || len(rest) > 3 {
		return cliOptions{}, errors.New("expected <course.geojson> <shot.json> [out.geojson]")
	}
	opts.coursePath, opts.shotPath = rest[0], rest[1]
	if len(rest) == 3 {
		opts.outPath = rest[2]
	}
	return opts, nil
}

// overrideCoordinate parses an "x,y[,crs]" flag value. Without an explicit
// code the coordinate takes crs, the CRS of the shot it is replacing into.
func overrideCoordinate(s string, crs core.CRS) (core.Coordinate, error) {
	if strings.Count(s, ",") == 1 {
		s += "," + strconv.Itoa(int(crs))
	}
	c, err := geo.CoordinateFromString(s)
	if err != nil {
		return core.Coordinate{}, fmt.Errorf("invalid coordinate %q: %w", s, err)
	}
	return c, nil
}

func applyOverrides(shot *core.ShotContext, opts cliOptions) error {
	if opts.aim != "" {
		aim, err := overrideCoordinate(opts.aim, shot.Start.CRS)
		if err != nil {
			return err
		}
		shot.Aim = aim
	}
	if opts.pin != "" {
		pin, err := overrideCoordinate(opts.pin, shot.Start.CRS)
		if err != nil {
			return err
		}
		shot.Pin = pin
	}
	return nil
}

// runCLI evaluates one shot and writes the grid GeoJSON to opts.outPath, or stdout.
func runCLI(opts cliOptions) error {
	shot, err := readShot(opts.shotPath)
	if err != nil {
		return err
	}
	if err := applyOverrides(&shot, opts); err != nil {
		return err
	}

	// the course shares the CRS of the shot's start coordinate
	courseData, err := readCourse(opts.coursePath, shot.Start.CRS)
	if err != nil {
		return err
	}

	if err := setup(); err != nil {
		return err
	}
	defer shutdown()

	Logger.Debug().
		Int("regions", courseData.NumRegions()).
		Bool("bounded", courseData.Bounded()).
		Msg("Loaded course")

	command := worker.CmdOutcome
	if opts.kind == string(core.GridTarget) {
		command = worker.CmdTarget
	}

	out, err := eventDispatcher.Dispatch(dispatcher.Event{
		Command: command,
		Payload: worker.Request{Course: courseData, Shot: shot},
	})
	if err != nil {
		return err
	}
	res, ok := out.(worker.Result)
	if !ok {
		return fmt.Errorf("unexpected result %T", out)
	}

	grid := res.Evaluation.Grid
	Logger.Info().
		Str("kind", string(grid.Kind)).
		Int("cells", len(grid.Cells)).
		Float64("strokesGained", grid.WeightedStrokesGained).
		Float64("dispersion", grid.Dispersion).
		Dur("duration", res.Evaluation.Duration).
		Msg("Evaluated shot")

	if opts.upload {
		if err := uploadResult(opts.kind, res.Evaluation); err != nil {
			return err
		}
	}

	var w io.Writer = os.Stdout
	if opts.outPath != "" {
		f, err := os.Create(opts.outPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	return export.Write(w, grid, courseData.Frame())
}

func uploadResult(kind string, e *core.Evaluation) error {
	if APIClient == nil {
		return errors.New("statistics service is not configured")
	}
	filename := fmt.Sprintf("sgrid_%s_%s.geojson", kind, time.Now().UTC().Format("20060102_150405"))
	err := APIClient.UploadBytes(filename, e.GeoJSON, core.UploadMetadata{
		Kind:          e.Grid.Kind,
		StrokesGained: e.Grid.WeightedStrokesGained,
		Dispersion:    e.Grid.Dispersion,
		Tag:           "cli",
	})
	if err != nil {
		return fmt.Errorf("failed to upload grid: %w", err)
	}
	Logger.Info().Str("file", filename).Msg("Uploaded grid")
	return nil
}

func readShot(path string) (core.ShotContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.ShotContext{}, fmt.Errorf("failed to read shot: %w", err)
	}
	var shot core.ShotContext
	if err := json.Unmarshal(data, &shot); err != nil {
		return core.ShotContext{}, fmt.Errorf("failed to parse shot %s: %w", path, err)
	}
	return shot, nil
}

func readCourse(path string, crs core.CRS) (*course.Course, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open course: %w", err)
	}
	defer f.Close()
	return course.Read(f, crs)
}
