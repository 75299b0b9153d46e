package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	xterm "github.com/charmbracelet/x/term"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/san-kum/asciivid/internal/analysis"
	"github.com/san-kum/asciivid/internal/config"
	"github.com/san-kum/asciivid/internal/frames"
	"github.com/san-kum/asciivid/internal/storage"
	"github.com/san-kum/asciivid/internal/term"
	"github.com/san-kum/asciivid/internal/tui"
	"github.com/san-kum/asciivid/internal/viz"
)

const (
	fallbackCols = 80
	fallbackRows = 24
)

func renderImage(cmd *cobra.Command, args []string) error {
	img, err := frames.Decode(args[0])
	if err != nil {
		return err
	}

	c, r := cols, rows
	if c <= 0 || r <= 0 {
		tc, tr := fallbackCols, fallbackRows
		if term.IsTerminal(os.Stdout) {
			if w, h, err := xterm.GetSize(os.Stdout.Fd()); err == nil && w > 0 && h > 0 {
				tc, tr = w, h
			}
		}
		if c <= 0 {
			c = tc
		}
		if r <= 0 {
			r = tr
		}
	}

	art, err := viz.Render(img, c, r)
	if err != nil {
		return err
	}
	fmt.Print(art)
	return nil
}

func framesArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return config.DefaultFramesDir
}

func listFrames(cmd *cobra.Command, args []string) error {
	paths, err := frames.List(framesArg(args))
	if err != nil {
		return err
	}

	tableRows := make([][]string, 0, len(paths))
	var total int64
	for i, res := range frames.ProbeAll(paths, 0) {
		name := filepath.Base(res.Info.Path)
		if res.Err != nil {
			tableRows = append(tableRows, []string{strconv.Itoa(i), name, "?", "-", "-"})
			continue
		}
		total += res.Info.Bytes
		tableRows = append(tableRows, []string{
			strconv.Itoa(i),
			name,
			res.Info.Format,
			fmt.Sprintf("%dx%d", res.Info.Width, res.Info.Height),
			humanize.Bytes(uint64(res.Info.Bytes)),
		})
	}

	fmt.Println(renderTable(
		[]column{right("#"), left("File"), left("Format"), right("Size"), right("Bytes")},
		tableRows,
	))
	fmt.Println(viz.Metric("frames", humanize.Comma(int64(len(paths)))) + "  " + viz.Metric("total", humanize.Bytes(uint64(total))))
	return nil
}

func previewFrames(cmd *cobra.Command, args []string) error {
	src, err := frames.Open(framesArg(args))
	if err != nil {
		return err
	}
	return tui.RunPreview(src, interval)
}

func listPlayers(cmd *cobra.Command, args []string) error {
	names := config.ListPresets()
	tableRows := make([][]string, 0, len(names))
	for _, name := range names {
		p := config.GetPreset(name)
		command := "-"
		if p.Binary != "" {
			command = strings.Join(append([]string{p.Binary}, p.Args...), " ")
		}
		tableRows = append(tableRows, []string{name, command, p.Description})
	}
	fmt.Println(renderTable([]column{left("Preset"), left("Command"), left("Description")}, tableRows))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	tableRows := make([][]string, 0, len(runs))
	for _, run := range runs {
		tableRows = append(tableRows, []string{
			run.ID,
			humanize.Time(run.Timestamp),
			strconv.Itoa(run.Frames),
			run.Wall.Round(time.Millisecond).String(),
			run.Drift().Round(time.Millisecond).String(),
			strconv.Itoa(run.Overruns),
		})
	}
	fmt.Println(renderTable(
		[]column{left("ID"), left("When"), right("Frames"), right("Wall"), right("Drift"), right("Overruns")},
		tableRows,
	))
	return nil
}

func reportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	timings, err := st.LoadTimings(args[0])
	if err != nil {
		return err
	}
	if len(timings) == 0 {
		return fmt.Errorf("no frame timings in run %s", meta.ID)
	}

	costs := make([]time.Duration, len(timings))
	sleeps := make([]time.Duration, len(timings))
	for i, t := range timings {
		costs[i], sleeps[i] = t.Cost, t.Slept
	}
	sum := analysis.Summarize(costs, meta.Interval, meta.Wall)

	fmt.Println(viz.Title.Render("pacing report: " + meta.ID))
	fmt.Println(viz.Metric("frames dir", meta.FramesDir))
	if meta.Player != "" {
		fmt.Println(viz.Metric("player", meta.Player))
	}
	fmt.Println(viz.Metric("frames", strconv.Itoa(sum.Frames)))
	fmt.Println(viz.Metric("interval", meta.Interval.String()))
	fmt.Println(viz.Metric("mean cost", sum.Mean.String()))
	fmt.Println(viz.Metric("p95 cost", sum.P95.String()))
	fmt.Println(viz.Metric("max cost", sum.Max.String()))

	overruns := fmt.Sprintf("%d (%.1f%%)", sum.Overruns, 100*float64(sum.Overruns)/float64(sum.Frames))
	if sum.Overruns > 0 {
		fmt.Println(viz.MetricLabel.Render("overruns:") + " " + viz.StatusWarn.Render(overruns))
	} else {
		fmt.Println(viz.MetricLabel.Render("overruns:") + " " + viz.StatusOK.Render(overruns))
	}
	fmt.Println(viz.Metric("wall", meta.Wall.String()))
	fmt.Println(viz.Metric("drift", sum.Drift.String()))
	fmt.Println()

	fmt.Println(analysis.PlotPacing(costs, sleeps, 80, 12))
	fmt.Println()

	if period := analysis.StutterPeriod(costs); period > 0 {
		fmt.Println(analysis.PlotSpectrum(costs, 80, 10))
		fmt.Println(viz.Metric("stutter period", fmt.Sprintf("%.1f frames (%s)", period, time.Duration(period*float64(meta.Interval)).Round(time.Millisecond))))
	} else {
		fmt.Println(viz.Subtle.Render("no periodic stutter"))
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	out := "-"
	if len(args) > 1 {
		out = args[1]
	}
	st := storage.New(dataDir)
	if err := st.ExportJSON(args[0], out); err != nil {
		return err
	}
	if out != "-" {
		fmt.Fprintln(os.Stderr, viz.Metric("exported", out))
	}
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "asciivid.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := config.Save(path, config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Println(viz.Metric("wrote", path))
	return nil
}
