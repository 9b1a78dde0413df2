package cmd

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"zonal-tools/rasterio"
	"zonal-tools/zonal"
)

var nirBand int
var redBand int

// compositeCmd represents the composite command
var compositeCmd = &cobra.Command{
	Use:   "composite [output_file] [input_file ...]",
	Short: "Build a mean composite of aligned scenes",
	Long: `Reduce two or more aligned, cloud-masked scenes of one footprint
	to their pixelwise mean, approximating a clean single image. Pixels that
	are NoData in every scene stay NoData.

	With --ndvi, the normalized difference (nir-red)/(nir+red) of the two
	composited bands is written instead of the composite itself.`,
	Args: cobra.MinimumNArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevels()
		ctx := context.Background()
		inputs := args[1:]

		if !viper.GetBool("ndvi") {
			out, ref, err := rasterio.CompositeFiles(ctx, inputs, viper.GetInt("compositeBand"))
			if err != nil {
				logrus.Fatal(err)
			}
			if err := rasterio.Write(args[0], out, ref, viper.GetString("compositeFormat")); err != nil {
				logrus.Fatal(err)
			}
			return
		}

		nir, ref, err := rasterio.CompositeFiles(ctx, inputs, nirBand)
		if err != nil {
			logrus.Fatal(err)
		}
		red, _, err := rasterio.CompositeFiles(ctx, inputs, redBand)
		if err != nil {
			logrus.Fatal(err)
		}
		ndvi, err := zonal.NormalizedDifference(nir, red)
		if err != nil {
			logrus.Fatal(err)
		}
		// The index is a ratio; whatever sentinel the inputs carried no
		// longer lands inside the output's value range.
		ref.NoData = ndvi.NoData
		ref.HasNoData = true
		if err := rasterio.Write(args[0], ndvi, ref, viper.GetString("compositeFormat")); err != nil {
			logrus.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(compositeCmd)

	compositeCmd.Flags().Int("band", 1, "Band to composite from each input")
	err := viper.BindPFlag("compositeBand", compositeCmd.Flags().Lookup("band"))
	if err != nil {
		logrus.Exit(1)
	}

	compositeCmd.Flags().StringP("format", "f", "GTiff", "Output raster format, choose from: GTiff, KEA")
	err = viper.BindPFlag("compositeFormat", compositeCmd.Flags().Lookup("format"))
	if err != nil {
		logrus.Exit(1)
	}

	compositeCmd.Flags().Bool("ndvi", false, "Write the normalized difference of --nirBand and --redBand")
	err = viper.BindPFlag("ndvi", compositeCmd.Flags().Lookup("ndvi"))
	if err != nil {
		logrus.Exit(1)
	}

	compositeCmd.Flags().IntVar(&nirBand, "nirBand", 1, "Near-infrared band for --ndvi")
	err = viper.BindPFlag("nirBand", compositeCmd.Flags().Lookup("nirBand"))
	if err != nil {
		logrus.Exit(1)
	}

	compositeCmd.Flags().IntVar(&redBand, "redBand", 2, "Red band for --ndvi")
	err = viper.BindPFlag("redBand", compositeCmd.Flags().Lookup("redBand"))
	if err != nil {
		logrus.Exit(1)
	}
}
