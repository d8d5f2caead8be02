// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dataprep/imagenette/pkg/imagenette"
)

// RootOpts holds global CLI options.
type RootOpts struct {
	JSONOut bool
	Quiet   bool
	Config  string
}

// Execute runs the CLI with the given version string.
func Execute(version string) error {
	ro := &RootOpts{}
	ctx, cancel := signalContext(context.Background())
	defer cancel()

	root := &cobra.Command{
		Use:           "imagenette",
		Short:         "Prepare Imagenette-style datasets: fetch, split, annotate",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	// Global flags
	root.PersistentFlags().BoolVar(&ro.JSONOut, "json", false, "Emit machine-readable JSON events")
	root.PersistentFlags().BoolVarP(&ro.Quiet, "quiet", "q", false, "Quiet mode (minimal output)")
	root.PersistentFlags().StringVar(&ro.Config, "config", "", "Path to config file (YAML)")

	root.AddCommand(newFetchCmd(ctx, ro))
	root.AddCommand(newSplitCmd(ro))
	root.AddCommand(newPrepareCmd(ctx, ro))
	root.AddCommand(newVersionCmd(version))
	root.AddCommand(newConfigCmd())
	root.SetHelpCommand(&cobra.Command{Use: "help", Hidden: true})

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return err
	}
	return nil
}

func newFetchCmd(ctx context.Context, ro *RootOpts) *cobra.Command {
	var (
		rootDir  string
		checksum string
	)

	cmd := &cobra.Command{
		Use:   "fetch [DATASET]",
		Short: "Download and extract a dataset archive",
		Long: `Downloads a dataset archive and extracts it under the root directory.

Known datasets: ` + strings.Join(knownDatasets(), ", ") + `

If the dataset directory already exists the download is skipped. The archive
file is always removed afterwards, whether the fetch succeeded or not.`,
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return applyConfigDefaults(cmd, ro, map[string]*string{"root": &rootDir})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := resolveDataset(args)
			if err != nil {
				return err
			}
			ds.SHA256 = checksum

			progress, closeProgress := newProgress(ro)
			defer closeProgress()

			dir, err := imagenette.Ensure(ctx, rootDir, ds, progress)
			if err != nil {
				return err
			}
			if !ro.Quiet && !ro.JSONOut {
				fmt.Printf("dataset ready: %s\n", dir)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&rootDir, "root", "r", "datasets", "Root directory for downloaded datasets")
	cmd.Flags().StringVar(&checksum, "checksum", "", "Expected SHA-256 of the archive (skip verification when empty)")

	return cmd
}

func newSplitCmd(ro *RootOpts) *cobra.Command {
	var (
		datasetDir string
		outDir     string
		seed       int64
	)

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Partition a dataset into train/validation/search/test annotations",
		Long: `Builds the four annotation CSV files from an extracted dataset directory.

The dataset directory must contain "train" and "val" subdirectories whose
immediate children are class folders. Membership of every split is a
deterministic function of the directory contents and the seed.`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return applyConfigDefaults(cmd, ro, map[string]*string{"out": &outDir})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if datasetDir == "" {
				return fmt.Errorf("missing --dataset-dir")
			}
			return runSplit(ro, datasetDir, outDir, seed)
		},
	}

	cmd.Flags().StringVarP(&datasetDir, "dataset-dir", "d", "", "Extracted dataset directory (with train/ and val/)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "project", "Directory for the annotation CSV files")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for the stratified sampling")

	return cmd
}

func newPrepareCmd(ctx context.Context, ro *RootOpts) *cobra.Command {
	var (
		rootDir  string
		outDir   string
		seed     int64
		checksum string
	)

	cmd := &cobra.Command{
		Use:   "prepare [DATASET]",
		Short: "Fetch a dataset and build its split annotations in one step",
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return applyConfigDefaults(cmd, ro, map[string]*string{"root": &rootDir, "out": &outDir})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := resolveDataset(args)
			if err != nil {
				return err
			}
			ds.SHA256 = checksum

			progress, closeProgress := newProgress(ro)
			dir, err := imagenette.Ensure(ctx, rootDir, ds, progress)
			closeProgress()
			if err != nil {
				return err
			}

			return runSplit(ro, dir, outDir, seed)
		},
	}

	cmd.Flags().StringVarP(&rootDir, "root", "r", "datasets", "Root directory for downloaded datasets")
	cmd.Flags().StringVarP(&outDir, "out", "o", "project", "Directory for the annotation CSV files")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for the stratified sampling")
	cmd.Flags().StringVar(&checksum, "checksum", "", "Expected SHA-256 of the archive (skip verification when empty)")

	return cmd
}

func runSplit(ro *RootOpts, datasetDir, outDir string, seed int64) error {
	splits, err := imagenette.Split(datasetDir, seed)
	if err != nil {
		return err
	}
	paths, err := imagenette.WriteAnnotations(splits, outDir)
	if err != nil {
		return err
	}

	if ro.JSONOut {
		return printJSON(os.Stdout, paths)
	}
	if !ro.Quiet {
		for _, name := range imagenette.SplitNames {
			fmt.Printf("%-11s %6d rows  %s\n", name, len(splits[name]), paths[name])
		}
	}
	return nil
}

func resolveDataset(args []string) (imagenette.Dataset, error) {
	id := "imagenette2"
	if len(args) > 0 {
		id = args[0]
	}
	return imagenette.Lookup(id)
}

func knownDatasets() []string {
	return append(append([]string{}, imagenette.ImagenetteKinds...), "imagenet10k")
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
