package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/PumbleCorp/invader/build"
	"github.com/PumbleCorp/invader/internal/obslog"
)

var buildFlags struct {
	tagRoots         []string
	engine           string
	mapsDir          string
	noExternalTags   bool
	alwaysIndex      bool
	forgeCRC32       string
	tagDataAddress   string
	compression      string
	compressionLevel int
	out              string
}

var buildCmd = &cobra.Command{
	Use:   "build <scenario>",
	Short: "Build a cache file from a scenario tag",
	Long:  "Resolves, pre-compiles, indexes, assembles, and compresses a scenario tag into a playable cache file.",
	Args:  cobra.ExactArgs(1),
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().StringSliceVar(&buildFlags.tagRoots, "tag-root", nil, "tag directory to search (repeatable; earlier roots shadow later ones)")
	buildCmd.Flags().StringVar(&buildFlags.engine, "engine", "dark-circlet", "target engine: xbox, demo, retail, custom-edition, dark-circlet")
	buildCmd.Flags().StringVar(&buildFlags.mapsDir, "maps-dir", "", "directory holding bitmaps.map/sounds.map/loc.map")
	buildCmd.Flags().BoolVar(&buildFlags.noExternalTags, "no-external-tags", false, "disable resource map lookups entirely")
	buildCmd.Flags().BoolVar(&buildFlags.alwaysIndex, "always-index", false, "externalise any tag matching a resource map entry, skipping the byte-identical check")
	buildCmd.Flags().StringVar(&buildFlags.forgeCRC32, "forge-crc32", "", "hex CRC32 residue to forge the tag-data section's checksum to match")
	buildCmd.Flags().StringVar(&buildFlags.tagDataAddress, "tag-data-address", "", "hex override for the tag-data section's base virtual address")
	buildCmd.Flags().StringVar(&buildFlags.compression, "compression", "auto", "compression scheme: auto, none, zstd, deflate, ceaflate")
	buildCmd.Flags().IntVar(&buildFlags.compressionLevel, "compression-level", 6, "compression level (0-9) for zstd; deflate and ceaflate ignore it")
	buildCmd.Flags().StringVarP(&buildFlags.out, "out", "o", "", "output cache file path (required)")
	buildCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	engine, err := parseEngine(buildFlags.engine)
	if err != nil {
		return err
	}

	scheme, err := parseCompressionScheme(buildFlags.compression)
	if err != nil {
		return err
	}

	params := build.Params{
		Scenario:         args[0],
		TagRoots:         buildFlags.tagRoots,
		Engine:           engine,
		MapsDirectory:    buildFlags.mapsDir,
		NoExternalTags:   buildFlags.noExternalTags,
		AlwaysIndexTags:  buildFlags.alwaysIndex,
		CompressionLevel: buildFlags.compressionLevel,
		Compression:      scheme,
	}

	if buildFlags.forgeCRC32 != "" {
		v, err := strconv.ParseUint(buildFlags.forgeCRC32, 16, 32)
		if err != nil {
			return fmt.Errorf("--forge-crc32: %w", err)
		}
		crc := uint32(v)
		params.ForgeCRC32 = &crc
	}

	if buildFlags.tagDataAddress != "" {
		v, err := strconv.ParseUint(buildFlags.tagDataAddress, 16, 32)
		if err != nil {
			return fmt.Errorf("--tag-data-address: %w", err)
		}
		addr := uint32(v)
		params.TagDataAddress = &addr
	}

	level := logrus.InfoLevel
	if rootFlags.verbose {
		level = logrus.DebugLevel
	}
	log := obslog.New(level, os.Stderr)

	image, reports, err := build.CompileMap(context.Background(), params, log)
	for _, r := range reports {
		printReport(r)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(buildFlags.out, image, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", buildFlags.out, err)
	}

	fmt.Printf("%s %s (%d bytes)\n", color.GreenString("wrote"), buildFlags.out, len(image))
	return nil
}

func printReport(r build.Report) {
	switch r.Severity {
	case build.SeverityFatal:
		fmt.Fprintln(os.Stderr, color.RedString(r.String()))
	case build.SeverityPedantic:
		fmt.Fprintln(os.Stderr, color.CyanString(r.String()))
	default:
		fmt.Fprintln(os.Stderr, color.YellowString(r.String()))
	}
}

func parseCompressionScheme(name string) (build.CompressionScheme, error) {
	switch name {
	case "auto", "":
		return build.CompressionAuto, nil
	case "none":
		return build.CompressionNone, nil
	case "zstd":
		return build.CompressionZstdWholeImage, nil
	case "deflate":
		return build.CompressionDeflateWholeImage, nil
	case "ceaflate":
		return build.CompressionCeaflate, nil
	default:
		return 0, fmt.Errorf("unknown compression scheme %q (want auto, none, zstd, deflate, or ceaflate)", name)
	}
}
