package main

import (
	"fmt"

	"github.com/framecut/framecut-agent/internal/config"
	"github.com/framecut/framecut-agent/internal/keyframe"
	"github.com/framecut/framecut-agent/internal/project"
	"github.com/framecut/framecut-agent/internal/timeline"
	"github.com/spf13/cobra"
)

// options holds the flags shared by every command.
type options struct {
	sampling keyframe.SampleOptions
}

func newRootCmd() *cobra.Command {
	opts := &options{sampling: keyframe.DefaultSampleOptions()}

	rootCmd := &cobra.Command{
		Use:   "framecutctl",
		Short: "Inspect and edit framecut project documents",
		Long: `framecutctl works on exported framecut project documents (YAML) without a
running agent. It can list the timeline, sample keyframe curves, split
elements, draw the ruler for a zoom level and export an EDL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.Float64Var(&opts.sampling.Step, "step", opts.sampling.Step, "keyframe sampling step in milliseconds")
	flags.Float64Var(&opts.sampling.Tension, "tension", opts.sampling.Tension, "keyframe curve tension")

	rootCmd.AddCommand(
		newInspectCmd(opts),
		newSampleCmd(opts),
		newSplitCmd(opts),
		newRulerCmd(),
		newExportCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

// load reads a document and rebuilds its timeline.
func (o *options) load(path string) (*project.Document, *timeline.Store, error) {
	doc, err := project.LoadDocumentFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", path, err)
	}
	store, err := doc.Build(o.sampling)
	if err != nil {
		return nil, nil, fmt.Errorf("build %s: %w", path, err)
	}
	return doc, store, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "framecutctl %s (%s, built %s)\n", config.Version, config.GitCommit, config.BuildTime)
		},
	}
}
