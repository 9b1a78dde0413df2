package cmd

import (
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"zonal-tools/rasterio"
	"zonal-tools/statsio"
	"zonal-tools/zonal"
)

var statsBand int
var statsLabelBand int
var s2Lvl int

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats [values_file] [labels_file] [output_path]",
	Short: "Export the per-segment statistic table",
	Long: `Compute count, mean, min, max and sum per segment of a label
	raster, plus the segment centroid and its S2 cell, and write the table
	to CSV or Parquet depending on the output extension.

	Options:
		--s2Lvl: S2 cell level for the centroid cell column.`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevels()

		values, ref, err := rasterio.ReadBand(args[0], statsBand)
		if err != nil {
			logrus.Fatal(err)
		}
		labels, _, err := rasterio.ReadLabels(args[1], statsLabelBand)
		if err != nil {
			logrus.Fatal(err)
		}

		stats, err := zonal.Stats(values, labels, ref.Transform, zonal.Options{})
		if err != nil {
			logrus.Fatal(err)
		}

		switch strings.ToLower(filepath.Ext(args[2])) {
		case ".parquet":
			err = statsio.WriteParquet(stats, args[2], s2Lvl)
		default:
			err = statsio.WriteCSV(stats, args[2], s2Lvl)
		}
		if err != nil {
			logrus.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().IntVar(&statsBand, "band", 1, "Band of the values raster to aggregate")
	err := viper.BindPFlag("statsBand", statsCmd.Flags().Lookup("band"))
	if err != nil {
		logrus.Exit(1)
	}

	statsCmd.Flags().IntVar(&statsLabelBand, "labelBand", 1, "Band of the labels raster holding segment IDs")
	err = viper.BindPFlag("statsLabelBand", statsCmd.Flags().Lookup("labelBand"))
	if err != nil {
		logrus.Exit(1)
	}

	statsCmd.Flags().IntVarP(&s2Lvl, "s2Lvl", "l", 11, "S2 cell level for the centroid cell column")
	err = viper.BindPFlag("s2Lvl", statsCmd.Flags().Lookup("s2Lvl"))
	if err != nil {
		logrus.Exit(1)
	}
}
