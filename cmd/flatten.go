package cmd

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/spf13/cobra"

	"github.com/fhir-analytics/ingest-backend/internal/flatten"
	"github.com/fhir-analytics/ingest-backend/internal/partition"
	"github.com/fhir-analytics/ingest-backend/internal/payload"
	"github.com/fhir-analytics/ingest-backend/internal/types"
	"github.com/fhir-analytics/ingest-backend/internal/writer"
)

var (
	outputDir  string
	flattenCmd = &cobra.Command{
		Use:   "flatten [input json file path]",
		Short: "flattens a local ingest payload into parquet plus a CSV preview",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			input_file := args[0]
			if _, err := os.Stat(input_file); os.IsNotExist(err) {
				fmt.Printf("JSON file: %s does not exist\n", input_file)
				os.Exit(1)
			}
			if outputDir != "" {
				if _, err := os.Stat(outputDir); os.IsNotExist(err) {
					if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
						panic(err.Error())
					}
				}
			} else {
				outputDir, _ = os.Getwd()
			}

			data, err := os.ReadFile(input_file)
			if err != nil {
				panic(err.Error())
			}
			p, err := payload.Parse(data)
			if err != nil {
				fmt.Printf("payload rejected: %v\n", err)
				os.Exit(1)
			}

			base := path.Base(input_file)
			source := flatten.ResolveSource(p.Meta, "", base)
			rows, err := flatten.Flatten(p, base, source)
			if err != nil {
				fmt.Printf("no rows produced: %v\n", err)
				os.Exit(1)
			}
			rows = partition.Apply(rows, partition.Derive(source, p.Meta.ResponseTs))

			body, err := writer.Encode(rows)
			if err != nil {
				panic(err.Error())
			}
			parquetFile := outputDir + "/" + strings.TrimSuffix(base, path.Ext(base)) + ".parquet"
			if err := os.WriteFile(parquetFile, body, 0644); err != nil {
				panic(err.Error())
			}

			previewFile := outputDir + "/preview.csv"
			fileio, err := os.Create(previewFile)
			if err != nil {
				panic(err.Error())
			}
			df := dataframe.LoadRecords(types.RowsToRecords(rows))
			if err := df.WriteCSV(fileio); err != nil {
				panic(err.Error())
			}
			fmt.Printf("Flattened %d rows into: %s (preview at %s)\n", len(rows), parquetFile, previewFile)
		},
	}
)

func init() {
	flattenCmd.PersistentFlags().StringVarP(&outputDir, "output-dir", "o", "", "Path to output directory")
	rootCmd.AddCommand(flattenCmd)
}
