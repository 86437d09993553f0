package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/framecut/framecut-agent/internal/export"
	"github.com/framecut/framecut-agent/internal/keyframe"
	"github.com/framecut/framecut-agent/internal/project"
	"github.com/framecut/framecut-agent/internal/timecode"
	"github.com/spf13/cobra"
)

func newInspectCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <document.yaml>",
		Short: "List the elements of a project document",
		Long: `Print every element in row order with its visible range on the timeline
and the keyframe channels that animate it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, store, err := opts.load(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%d elements, ends at %s)\n\n", doc.Name, store.Len(), clock(store.End()))

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ROW\tID\tFILETYPE\tVISIBLE\tCHANNELS")
			for row, e := range store.Elements() {
				channels := "-"
				if anim, err := store.Animation(e.ID); err == nil && anim.Active() {
					channels = strings.Join(activeChannels(anim), ",")
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s-%s\t%s\n",
					row, e.ID, e.Filetype,
					clock(e.VisibleStart()), clock(e.VisibleEnd()),
					channels)
			}
			return tw.Flush()
		},
	}
}

// clock renders milliseconds as m:ss.mmm.
func clock(ms int64) string {
	return fmt.Sprintf("%d:%02d.%03d", ms/60000, ms/1000%60, ms%1000)
}

func activeChannels(anim *keyframe.Animation) []string {
	var names []string
	for _, name := range anim.Names() {
		ch, err := anim.Channel(name)
		if err == nil && ch.Active() {
			names = append(names, name)
		}
	}
	return names
}

func newSampleCmd(opts *options) *cobra.Command {
	var (
		channel string
		track   int
		svg     bool
	)

	cmd := &cobra.Command{
		Use:   "sample <document.yaml> <element-id>",
		Short: "Print the sampled keyframe curve of an element",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := opts.load(args[0])
			if err != nil {
				return err
			}
			anim, err := store.Animation(args[1])
			if err != nil {
				return err
			}
			ch, err := anim.Channel(channel)
			if err != nil {
				return err
			}
			if !ch.Active() {
				return fmt.Errorf("channel %q of %s has no keyframes", channel, args[1])
			}

			out := cmd.OutOrStdout()
			if svg {
				points, err := ch.Points(track)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, keyframe.BuildPath(points, opts.sampling.Tension).SVG())
				return nil
			}

			samples, err := ch.AllPoints(track)
			if err != nil {
				return err
			}
			for _, p := range samples {
				fmt.Fprintf(out, "%g\t%g\n", p.T, p.V)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&channel, "channel", keyframe.ChannelOpacity, "channel to sample (opacity or position)")
	cmd.Flags().IntVar(&track, "track", 0, "track within the channel (position: 0 is x, 1 is y)")
	cmd.Flags().BoolVar(&svg, "svg", false, "print the curve through the control points as an SVG path")
	return cmd
}

func newSplitCmd(opts *options) *cobra.Command {
	var (
		at     int64
		output string
	)

	cmd := &cobra.Command{
		Use:   "split <document.yaml> <element-id>",
		Short: "Split an element at a timeline time",
		Long: `Split an element in two at --at milliseconds and write the updated document
to --output, or to stdout when no output file is given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("at") {
				return errors.New("--at is required")
			}
			doc, store, err := opts.load(args[0])
			if err != nil {
				return err
			}
			created, err := store.Split(args[1], at)
			if err != nil {
				return fmt.Errorf("split %s: %w", args[1], err)
			}

			updated := project.NewDocument(doc.Name, doc.TimelineRange, project.Capture(store))
			if output == "" {
				return project.EncodeDocument(cmd.OutOrStdout(), updated)
			}
			if err := project.SaveDocumentFile(output, updated); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s, saved %s\n", created.ID, output)
			return nil
		},
	}

	cmd.Flags().Int64Var(&at, "at", 0, "timeline time in milliseconds")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the result to this file")
	return cmd
}

func newRulerCmd() *cobra.Command {
	var (
		timelineRange float64
		scroll        float64
		width         float64
		majorOnly     bool
	)

	cmd := &cobra.Command{
		Use:   "ruler",
		Short: "Print the ruler ticks for a zoom level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := timecode.FromRange(timelineRange)
			if !m.Valid() {
				return fmt.Errorf("invalid timeline range %g", timelineRange)
			}
			out := cmd.OutOrStdout()
			for _, tick := range timecode.Ticks(m, scroll, width) {
				if majorOnly && !tick.Major {
					continue
				}
				if tick.Major {
					fmt.Fprintf(out, "%.1f\t%s\n", tick.X, tick.Label)
				} else {
					fmt.Fprintf(out, "%.1f\n", tick.X)
				}
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&timelineRange, "range", 4, "timeline zoom range")
	cmd.Flags().Float64Var(&scroll, "scroll", 0, "horizontal scroll in pixels")
	cmd.Flags().Float64Var(&width, "width", 800, "viewport width in pixels")
	cmd.Flags().BoolVar(&majorOnly, "major", false, "only print labelled ticks")
	return cmd
}

func newExportCmd(opts *options) *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export a project document for other editors",
	}
	exportCmd.AddCommand(newExportEDLCmd(opts))
	return exportCmd
}

func newExportEDLCmd(opts *options) *cobra.Command {
	var (
		outDir string
		fps    float64
	)

	cmd := &cobra.Command{
		Use:   "edl <document.yaml>",
		Short: "Export the timeline as a CMX3600 EDL",
		Long: `Convert every element with a source file into an EDL event. Text and shape
elements have no source media and are skipped. The EDL is printed to stdout
unless --out names a directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, store, err := opts.load(args[0])
			if err != nil {
				return err
			}

			events, skipped := export.Events(store.Elements())
			if len(events) == 0 {
				return errors.New("no elements with source media to export")
			}
			if len(skipped) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "Skipped %d element(s) without source media: %s\n", len(skipped), strings.Join(skipped, ", "))
			}

			title := export.SanitizeName(doc.Name, 120)
			if title == "" {
				title = "framecut_export"
			}
			edl := export.GenerateEDL(events, title, fps)

			if outDir == "" {
				_, err := io.WriteString(cmd.OutOrStdout(), edl)
				return err
			}
			path, err := export.WriteFile(outDir, title, "edl", edl)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "directory to write the EDL into")
	cmd.Flags().Float64Var(&fps, "fps", 30, "frame rate of the record timecode")
	return cmd
}
