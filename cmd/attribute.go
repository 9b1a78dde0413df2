package cmd

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"zonal-tools/rasterio"
	"zonal-tools/zonal"
)

var valBand int
var labelBand int
var numWorkers int

// attributeCmd represents the attribute command
var attributeCmd = &cobra.Command{
	Use:   "attribute [values_file] [labels_file] [output_file]",
	Short: "Paint per-segment aggregates back over a segmented raster",
	Long: `Compute one aggregate per segment of a label raster and write a
	raster of the same shape where every pixel holds its segment's
	aggregate.

	Both inputs must share dimensions. Labels must be non-negative
	integers; values are read as float64 whatever the band type. NoData
	values are excluded from the aggregate unless --keepNodata is set, and
	segments with no valid values come out as NoData.

	Options:
		--numWorkers: Number of workers for parallel aggregation. Not recommended
									to exceed number of CPU cores.
		--aggFunc:		Aggregate painted over each segment. Default is the mean,
									choose from: mean, sum, max, min
		--stream:			Process block-by-block instead of loading both rasters.
									Use for rasters that do not comfortably fit in memory twice.`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevels()

		aggFunc := chooseAggFunc(viper.GetString("aggFunc"))

		if viper.GetBool("stream") {
			opts := rasterio.AttributeOptions{
				Band:       valBand,
				LabelBand:  labelBand,
				Workers:    numWorkers,
				KeepNoData: viper.GetBool("keepNodata"),
				Agg:        aggFunc,
				Format:     viper.GetString("format"),
			}
			if err := rasterio.AttributeDataset(context.Background(), args[0], args[1], args[2], opts); err != nil {
				logrus.Fatal(err)
			}
			return
		}

		values, ref, err := rasterio.ReadBand(args[0], valBand)
		if err != nil {
			logrus.Fatal(err)
		}
		labels, _, err := rasterio.ReadLabels(args[1], labelBand)
		if err != nil {
			logrus.Fatal(err)
		}

		opts := zonal.Options{
			KeepNoData: viper.GetBool("keepNodata"),
			Workers:    numWorkers,
			Agg:        aggFunc,
		}
		out, err := zonal.Aggregate(values, labels, opts)
		if err != nil {
			logrus.Fatal(err)
		}

		if err := rasterio.Write(args[2], out, ref, viper.GetString("format")); err != nil {
			logrus.Fatal(err)
		}
	},
}

func chooseAggFunc(funcFlag string) zonal.AggFunc {
	switch funcFlag {
	case "mean":
		return zonal.Mean
	case "sum":
		return zonal.Sum
	case "max":
		return zonal.Max
	case "min":
		return zonal.Min
	default:
		logrus.Warnf("Aggregation function %s not recognized, using mean", funcFlag)
		return zonal.Mean
	}
}

func init() {
	rootCmd.AddCommand(attributeCmd)

	attributeCmd.Flags().IntVarP(&valBand, "band", "b", 1, "Band of the values raster to aggregate")
	err := viper.BindPFlag("band", attributeCmd.Flags().Lookup("band"))
	if err != nil {
		logrus.Exit(1)
	}

	attributeCmd.Flags().IntVarP(&labelBand, "labelBand", "L", 1, "Band of the labels raster holding segment IDs")
	err = viper.BindPFlag("labelBand", attributeCmd.Flags().Lookup("labelBand"))
	if err != nil {
		logrus.Exit(1)
	}

	attributeCmd.Flags().IntVarP(&numWorkers, "numWorkers", "n", 8, "Number of workers to spawn for parallel processing")
	err = viper.BindPFlag("numWorkers", attributeCmd.Flags().Lookup("numWorkers"))
	if err != nil {
		logrus.Exit(1)
	}

	attributeCmd.Flags().StringP("aggFunc", "a", "mean", "Aggregate painted over each segment, choose from: mean, sum, max, min")
	err = viper.BindPFlag("aggFunc", attributeCmd.Flags().Lookup("aggFunc"))
	if err != nil {
		logrus.Exit(1)
	}

	attributeCmd.Flags().Bool("keepNodata", false, "Feed NoData values into the aggregate instead of skipping them")
	err = viper.BindPFlag("keepNodata", attributeCmd.Flags().Lookup("keepNodata"))
	if err != nil {
		logrus.Exit(1)
	}

	attributeCmd.Flags().Bool("stream", false, "Aggregate block-by-block instead of in memory")
	err = viper.BindPFlag("stream", attributeCmd.Flags().Lookup("stream"))
	if err != nil {
		logrus.Exit(1)
	}

	attributeCmd.Flags().StringP("format", "f", "GTiff", "Output raster format, choose from: GTiff, KEA")
	err = viper.BindPFlag("format", attributeCmd.Flags().Lookup("format"))
	if err != nil {
		logrus.Exit(1)
	}
}
