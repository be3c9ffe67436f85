package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/earthboundkid/versioninfo/v2"
	"github.com/joho/godotenv"
	"github.com/rm-hull/alphablend/cmd"
	"github.com/rm-hull/alphablend/internal/resample"
	"github.com/spf13/cobra"
)

func main() {
	var rootPath string
	var manifestPath string
	var poolSize int

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	rootCmd := &cobra.Command{
		Use:     "alphablend",
		Long:    `Alpha-correct image resizing and compositing`,
		Version: versioninfo.Short(),
	}

	var width, height int
	var kernel string
	var noBlur bool
	resizeCmd := &cobra.Command{
		Use:   "resize <in> <out> --width <w> --height <h> [--kernel <name>] [--no-blur]",
		Short: "Resize an image without fringing at transparent edges",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Resize(c.Context(), args[0], args[1], width, height, kernel, noBlur)
		},
	}
	resizeCmd.Flags().IntVar(&width, "width", 0, "Target width in pixels")
	resizeCmd.Flags().IntVar(&height, "height", 0, "Target height in pixels")
	resizeCmd.Flags().StringVar(&kernel, "kernel", resample.DefaultKernel.String(),
		fmt.Sprintf("Interpolation kernel (%s)", strings.Join(resample.KernelNames(), ", ")))
	resizeCmd.Flags().BoolVar(&noBlur, "no-blur", false, "Disable the Gaussian pre-filter when downsampling")
	_ = resizeCmd.MarkFlagRequired("width")
	_ = resizeCmd.MarkFlagRequired("height")

	var animatePath string
	var frameDelay float64
	overlayCmd := &cobra.Command{
		Use:   "overlay <out> <background> <layer>... [--animate <apng>]",
		Short: "Composite layers over a background, in order",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Overlay(c.Context(), args[0], args[1], args[2:], animatePath, frameDelay)
		},
	}
	overlayCmd.Flags().StringVar(&animatePath, "animate", "", "Also write each intermediate composite as an APNG frame")
	overlayCmd.Flags().Float64Var(&frameDelay, "frame-delay", 0.5, "Seconds per animation frame")

	compareCmd := &cobra.Command{
		Use:   "compare <actual> <expected>",
		Short: "Print the mean squared error between two images",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			mse, err := cmd.Compare(c.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "%g\n", mse)
			return nil
		},
	}

	batchCmd := &cobra.Command{
		Use:   "batch --manifest <path> [--root <path>] [--pool <n>]",
		Short: "Process every job in a manifest",
		RunE: func(c *cobra.Command, _ []string) error {
			return cmd.Batch(c.Context(), manifestPath, rootPath, poolSize)
		},
	}
	batchCmd.Flags().StringVar(&manifestPath, "manifest", "", "Path to manifest JSON")
	batchCmd.Flags().StringVar(&rootPath, "root", "./data", "Path to root folder")
	batchCmd.Flags().IntVar(&poolSize, "pool", 4, "Number of worker goroutines")
	_ = batchCmd.MarkFlagRequired("manifest")

	var port int
	var debug bool
	var schedule string
	apiServerCmd := &cobra.Command{
		Use:   "api-server [--root <path>] [--port <port>] [--debug] [--manifest <path> --schedule <cron>]",
		Short: "Start HTTP API server",
		Run: func(_ *cobra.Command, _ []string) {
			cmd.ApiServer(cmd.ApiServerOptions{
				RootDir:  rootPath,
				Port:     port,
				Debug:    debug,
				Manifest: manifestPath,
				Schedule: schedule,
				PoolSize: poolSize,
			})
		},
	}
	apiServerCmd.Flags().StringVar(&rootPath, "root", "./data", "Path to root folder")
	apiServerCmd.Flags().IntVar(&port, "port", 8080, "Port to run HTTP server on")
	apiServerCmd.Flags().BoolVar(&debug, "debug", false, "Enable debugging (pprof) - WARING: do not enable in production")
	apiServerCmd.Flags().StringVar(&manifestPath, "manifest", "", "Manifest to process on a schedule")
	apiServerCmd.Flags().StringVar(&schedule, "schedule", "30 4 * * *", "Cron expression for scheduled batch runs")
	apiServerCmd.Flags().IntVar(&poolSize, "pool", 4, "Number of worker goroutines for scheduled runs")

	rootCmd.AddCommand(resizeCmd, overlayCmd, compareCmd, batchCmd, apiServerCmd)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}
